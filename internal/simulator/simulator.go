package simulator

import (
	"math/rand"
	"time"

	"medicore-dashboard/internal/models"
)

// 病程阶段（每个设备按 tick 循环推进）
const (
	PhaseNormal        = "NORMAL"
	PhaseDeteriorating = "DETERIORATING"
	PhaseEmergency     = "EMERGENCY"
)

// 各阶段的 tick 边界
const (
	deterioratingStart = 30
	emergencyStart     = 60
	cycleLength        = 70
)

// 基线体征
const (
	baselineHR   = 75
	baselineSpO2 = 98
	emergencyHR  = 125
	emergencySp  = 85
)

// Simulator 生成按阶段演进的模拟生命体征流
// 每个设备独立循环：正常 -> 恶化 -> 急救 -> 复位
type Simulator struct {
	deviceIDs []string
	tick      int
	rng       *rand.Rand
}

// New 创建模拟器
func New(deviceIDs []string, seed int64) *Simulator {
	return &Simulator{
		deviceIDs: deviceIDs,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Tick 当前 tick 序号
func (s *Simulator) Tick() int {
	return s.tick
}

// Phase 当前所处阶段
func (s *Simulator) Phase() string {
	switch {
	case s.tick >= emergencyStart:
		return PhaseEmergency
	case s.tick >= deterioratingStart:
		return PhaseDeteriorating
	default:
		return PhaseNormal
	}
}

// Next 生成当前 tick 下全部设备的事件并推进 tick
func (s *Simulator) Next(now time.Time) []*models.VitalEvent {
	events := make([]*models.VitalEvent, 0, len(s.deviceIDs))
	for _, id := range s.deviceIDs {
		events = append(events, s.generate(id, now))
	}

	s.tick++
	if s.tick >= cycleLength {
		s.tick = 0
	}
	return events
}

func (s *Simulator) generate(deviceID string, now time.Time) *models.VitalEvent {
	e := &models.VitalEvent{
		DeviceID:  deviceID,
		Timestamp: now,
	}

	switch s.Phase() {
	case PhaseEmergency:
		hr := emergencyHR + s.rng.Intn(5)
		spo2 := emergencySp - s.rng.Intn(2)
		e.HR = &hr
		e.SpO2 = &spo2
		e.Posture = models.PostureFalling
		e.Area = models.AreaBathroom
	case PhaseDeteriorating:
		// HR 逐 tick 上升，SpO2 逐 tick 下滑
		progress := s.tick - deterioratingStart
		hr := baselineHR + progress + s.rng.Intn(3)
		spo2 := baselineSpO2 - progress/5
		e.HR = &hr
		e.SpO2 = &spo2
		e.Posture = models.PostureStanding
		e.Area = models.AreaCorridor
		e.Steps = s.rng.Intn(10)
	default:
		hr := baselineHR + s.rng.Intn(7) - 3
		spo2 := baselineSpO2 - s.rng.Intn(2)
		e.HR = &hr
		e.SpO2 = &spo2
		e.Posture = models.PostureSitting
		e.Area = models.AreaLaboratory
		e.Steps = s.rng.Intn(5)
	}

	return e
}
