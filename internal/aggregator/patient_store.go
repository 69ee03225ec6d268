package aggregator

import (
	"sync"
	"time"

	"medicore-dashboard/internal/models"
)

// patientState 单个设备的运行状态（仅聚合引擎可变更）
type patientState struct {
	deviceID   string
	latest     *models.VitalEvent
	riskScore  float64
	prevRisk   float64
	dataPoints int64
	patterns   []string
	lastUpdate time.Time
	window     []models.VitalEvent // 短滚动窗口（模式检测用）
}

// PatientStore 患者状态存储：device_id → 状态
// 单设备更新对读者原子：读者只拿拷贝快照，不会观察到半更新字段。
// 设备停止发送不会被删除，由 last_update 60 秒窗口派生 inactive。
type PatientStore struct {
	mu       sync.RWMutex
	patients map[string]*patientState
}

// NewPatientStore 创建患者状态存储
func NewPatientStore() *PatientStore {
	return &PatientStore{
		patients: make(map[string]*patientState),
	}
}

// apply 更新设备状态（首次事件创建状态）；返回更新后的风险分数和之前的风险分数
func (s *PatientStore) apply(e *models.VitalEvent) (state *patientState, newPatterns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.patients[e.DeviceID]
	if !ok {
		st = &patientState{deviceID: e.DeviceID}
		s.patients[e.DeviceID] = st
	}

	st.prevRisk = st.riskScore
	st.latest = e
	st.dataPoints++
	st.lastUpdate = e.Timestamp
	st.riskScore = ComputeRisk(e)

	st.window = append(st.window, *e)
	if len(st.window) > patternWindowSize {
		st.window = st.window[1:]
	}

	newPatterns = detectPatterns(st.window, st.patterns)
	for _, label := range newPatterns {
		st.patterns = append(st.patterns, label)
	}
	if len(st.patterns) > maxPatternLabels {
		st.patterns = st.patterns[len(st.patterns)-maxPatternLabels:]
	}

	return st, newPatterns
}

// snapshotLocked 在持有读锁的前提下生成快照
func (st *patientState) snapshot(recentAlerts int) models.PatientSnapshot {
	snap := models.PatientSnapshot{
		DeviceID:     st.deviceID,
		RiskScore:    st.riskScore,
		DataPoints:   st.dataPoints,
		RecentAlerts: recentAlerts,
		Patterns:     append([]string(nil), st.patterns...),
	}
	if !st.lastUpdate.IsZero() {
		t := st.lastUpdate
		snap.LastUpdate = &t
	}
	if st.latest != nil {
		snap.LatestData = &models.LatestVitals{
			HR:      st.latest.HR,
			SpO2:    st.latest.SpO2,
			Posture: models.PostureName(st.latest.Posture),
			Area:    models.AreaName(st.latest.Area),
			Steps:   st.latest.Steps,
		}
	}
	return snap
}

// Snapshot 返回单个设备的快照
func (s *PatientStore) Snapshot(deviceID string, recentAlerts int) (models.PatientSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.patients[deviceID]
	if !ok {
		return models.PatientSnapshot{}, false
	}
	return st.snapshot(recentAlerts), true
}

// SnapshotAll 返回全部设备快照
func (s *PatientStore) SnapshotAll(recentAlerts func(deviceID string) int) map[string]models.PatientSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.PatientSnapshot, len(s.patients))
	for id, st := range s.patients {
		out[id] = st.snapshot(recentAlerts(id))
	}
	return out
}

// RecentWindow 返回设备最近的事件窗口拷贝（详情 API 用）
func (s *PatientStore) RecentWindow(deviceID string) []models.VitalEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.patients[deviceID]
	if !ok {
		return nil
	}
	return append([]models.VitalEvent(nil), st.window...)
}

// Count 返回已知设备数
func (s *PatientStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}

// ActiveCount 返回 last_update 落在 now 之前 window 窗口内的设备数
func (s *PatientStore) ActiveCount(now time.Time, window time.Duration) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, st := range s.patients {
		if !st.lastUpdate.IsZero() && now.Sub(st.lastUpdate) <= window {
			count++
		}
	}
	return count
}

// AvgRisk 返回全体患者风险分数均值（无患者时为 0，不会除零）
func (s *PatientStore) AvgRisk() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.patients) == 0 {
		return 0
	}
	var sum float64
	for _, st := range s.patients {
		sum += st.riskScore
	}
	return sum / float64(len(s.patients))
}
