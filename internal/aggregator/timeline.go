package aggregator

import (
	"sync"

	"medicore-dashboard/internal/models"
)

// TimelineCapacity 时间线容量（只保留最近 10 条活动）
const TimelineCapacity = 10

// Timeline 有界的 Agent 活动时间线
// 最新在前；超出容量时淘汰最旧的一条（按插入先后，不是 LRU）。
// 时间戳相同的记录以插入顺序为准。
type Timeline struct {
	mu      sync.RWMutex
	entries []models.AgentActivity
}

// NewTimeline 创建时间线
func NewTimeline() *Timeline {
	return &Timeline{
		entries: make([]models.AgentActivity, 0, TimelineCapacity),
	}
}

// Record 记录一条活动（插入到头部，O(容量) 即 O(1)）
func (t *Timeline) Record(activity models.AgentActivity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) < TimelineCapacity {
		t.entries = append(t.entries, models.AgentActivity{})
	}
	copy(t.entries[1:], t.entries)
	t.entries[0] = activity
}

// Snapshot 返回当前时间线拷贝，最新在前，长度 ≤ 10
func (t *Timeline) Snapshot() []models.AgentActivity {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.AgentActivity, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len 返回当前条目数
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
