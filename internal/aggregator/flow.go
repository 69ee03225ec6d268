package aggregator

import (
	"sort"
	"strings"
	"sync"
	"time"

	"medicore-dashboard/internal/models"
)

// 流程图节点高亮时长
const (
	AgentNodeDuration    = 2000 * time.Millisecond
	DataPathNodeDuration = 1500 * time.Millisecond
)

// 数据通路节点（数据流动时三个节点作为一组同时亮起/熄灭）
var dataPathNodes = []string{"flow-store", "flow-listener", "flow-state"}

// FlowVisualizer 流程图高亮状态
// 每个节点一个独立的过期时间；重复激活重置时长（last-writer-wins），不叠加。
// 过期在读取时惰性判定，不依赖后台定时器。
type FlowVisualizer struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewFlowVisualizer 创建流程图高亮状态
func NewFlowVisualizer() *FlowVisualizer {
	return &FlowVisualizer{
		expires: make(map[string]time.Time),
	}
}

// Activate 激活节点高亮（按节点类别选择固定时长）
func (f *FlowVisualizer) Activate(nodeID string, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[nodeID] = now.Add(nodeDuration(nodeID))
}

// Observe 根据一条 Agent 活动激活相关节点
// Agent 节点按枚举映射激活；action 中出现 data/sensor 字样时整组激活数据通路节点
func (f *FlowVisualizer) Observe(activity models.AgentActivity, now time.Time) {
	if nodeID, ok := activity.Agent.FlowNode(); ok {
		f.Activate(nodeID, now)
	}

	action := strings.ToLower(activity.Action)
	if strings.Contains(action, "data") || strings.Contains(action, "sensor") {
		for _, nodeID := range dataPathNodes {
			f.Activate(nodeID, now)
		}
	}
}

// Active 返回当前处于高亮状态的节点 ID（now < expires_at）
// 已过期的节点顺带清理
func (f *FlowVisualizer) Active(now time.Time) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var active []string
	for nodeID, expiresAt := range f.expires {
		if now.Before(expiresAt) {
			active = append(active, nodeID)
		} else {
			delete(f.expires, nodeID)
		}
	}
	sort.Strings(active)
	return active
}

// IsActive 判断单个节点是否处于高亮状态
func (f *FlowVisualizer) IsActive(nodeID string, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	expiresAt, ok := f.expires[nodeID]
	return ok && now.Before(expiresAt)
}

func nodeDuration(nodeID string) time.Duration {
	for _, n := range dataPathNodes {
		if n == nodeID {
			return DataPathNodeDuration
		}
	}
	return AgentNodeDuration
}
