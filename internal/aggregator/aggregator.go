package aggregator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"medicore-dashboard/internal/models"
)

// ActiveWindow 患者视为 active 的时间窗口（last_update 距 now 不超过该值）
const ActiveWindow = 60 * time.Second

// Predictor 介入的最低风险分数（且要求风险较上一事件上升）
const predictorRiskFloor = 0.4

// Engine 聚合引擎：消费生命体征事件，维护患者状态，派生告警、
// 活动时间线和流程图高亮。患者状态只由本引擎变更，其余组件只读快照。
type Engine struct {
	mu        sync.Mutex // 串行化写路径：一条事件完整处理后再处理下一条
	store     *PatientStore
	alerts    *AlertRegistry
	timeline  *Timeline
	flow      *FlowVisualizer
	logger    *zap.Logger
	startedAt time.Time
}

// NewEngine 创建聚合引擎
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		store:     NewPatientStore(),
		alerts:    NewAlertRegistry(),
		timeline:  NewTimeline(),
		flow:      NewFlowVisualizer(),
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Apply 应用一条生命体征事件
// 返回更新后的患者快照和本次派生的 Agent 活动（已按发生顺序写入时间线）。
// 事件缺失 device_id 或 timestamp 时拒绝且不变更任何状态。
func (e *Engine) Apply(event *models.VitalEvent) (models.PatientSnapshot, []models.AgentActivity, error) {
	if event == nil || event.DeviceID == "" {
		return models.PatientSnapshot{}, nil, models.ErrMissingDeviceID
	}
	if event.Timestamp.IsZero() {
		return models.PatientSnapshot{}, nil, models.ErrMissingTimestamp
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st, newPatterns := e.store.apply(event)
	anomalies := DetectAnomalies(event)

	activities := make([]models.AgentActivity, 0, 4)

	// Monitor：每条事件必产生一次实时分析活动
	monitorStatus := models.StatusSuccess
	if len(anomalies) > 0 {
		monitorStatus = models.StatusFailed
	}
	activities = append(activities, models.NewActivity(
		models.AgentMonitor,
		fmt.Sprintf("Analyzing real-time sensor data from %s", models.AreaName(event.Area)),
		monitorStatus,
		event.DeviceID,
		monitorDetails(event, anomalies),
		event.Timestamp,
	))

	// Analyzer：窗口内检测到新模式时介入
	if len(newPatterns) > 0 {
		activities = append(activities, models.NewActivity(
			models.AgentAnalyzer,
			fmt.Sprintf("Pattern detected: %s", strings.Join(newPatterns, ", ")),
			models.StatusSuccess,
			event.DeviceID,
			fmt.Sprintf("Window of %d readings analyzed", len(st.window)),
			event.Timestamp,
		))
	}

	// Predictor：风险上升且达到关注线时介入
	if st.riskScore > st.prevRisk && st.riskScore >= predictorRiskFloor {
		activities = append(activities, models.NewActivity(
			models.AgentPredictor,
			"Deterioration risk rising",
			models.StatusRunning,
			event.DeviceID,
			fmt.Sprintf("Risk %.2f -> %.2f", st.prevRisk, st.riskScore),
			event.Timestamp,
		))
	}

	// Alert：风险向上穿越阈值时创建告警（最后记录，保证位于时间线头部）
	if alert := e.alerts.Evaluate(event.DeviceID, st.riskScore, anomalies, event.Timestamp); alert != nil {
		alertStatus := models.StatusSuccess
		if alert.Severity == models.SeverityCritical {
			alertStatus = models.StatusFailed
		}
		activities = append(activities, models.NewActivity(
			models.AgentAlert,
			fmt.Sprintf("Created %s alert", alert.Severity),
			alertStatus,
			event.DeviceID,
			alert.Message,
			event.Timestamp,
		))
		e.logger.Warn("Alert created",
			zap.String("device_id", event.DeviceID),
			zap.String("alert_id", alert.ID),
			zap.String("severity", string(alert.Severity)),
			zap.Float64("risk_score", st.riskScore),
		)
	}

	now := time.Now()
	for _, activity := range activities {
		e.timeline.Record(activity)
		e.flow.Observe(activity, now)
	}

	snap, _ := e.store.Snapshot(event.DeviceID, e.alerts.ActiveCount(event.DeviceID))
	return snap, activities, nil
}

// CoordinationSweep 周期性协调巡检（系统级活动，不关联具体设备）
func (e *Engine) CoordinationSweep(now time.Time) models.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.statsLocked(now)

	activity := models.NewActivity(
		models.AgentCoordinator,
		"Coordination cycle completed",
		models.StatusSuccess,
		"",
		fmt.Sprintf("Patients: %d active / %d total | Alerts: %d | Avg risk: %.2f",
			stats.ActivePatients, stats.TotalPatients, stats.TotalAlerts, stats.AvgRisk),
		now,
	)
	e.timeline.Record(activity)
	e.flow.Observe(activity, now)

	return stats
}

// PatientStates 返回全部患者快照（只读）
func (e *Engine) PatientStates() map[string]models.PatientSnapshot {
	return e.store.SnapshotAll(e.alerts.ActiveCount)
}

// PatientSnapshot 返回单个患者快照
func (e *Engine) PatientSnapshot(deviceID string) (models.PatientSnapshot, bool) {
	return e.store.Snapshot(deviceID, e.alerts.ActiveCount(deviceID))
}

// RecentEvents 返回患者最近的事件窗口（详情接口用）
func (e *Engine) RecentEvents(deviceID string) []models.VitalEvent {
	return e.store.RecentWindow(deviceID)
}

// Alerts 返回全部告警，最新在前
func (e *Engine) Alerts() []models.Alert {
	return e.alerts.List()
}

// AcknowledgeAlert 确认告警
func (e *Engine) AcknowledgeAlert(alertID string) (bool, error) {
	return e.alerts.Acknowledge(alertID)
}

// Timeline 返回活动时间线快照，最新在前，长度 ≤ 10
func (e *Engine) Timeline() []models.AgentActivity {
	return e.timeline.Snapshot()
}

// ActiveFlowNodes 返回当前高亮的流程图节点
func (e *Engine) ActiveFlowNodes(now time.Time) []string {
	return e.flow.Active(now)
}

// Stats 按需计算系统统计
func (e *Engine) Stats(now time.Time) models.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked(now)
}

func (e *Engine) statsLocked(now time.Time) models.Stats {
	bySeverity := e.alerts.CountBySeverity()
	return models.Stats{
		TotalPatients:  e.store.Count(),
		ActivePatients: e.store.ActiveCount(now, ActiveWindow),
		TotalAlerts:    e.alerts.Total(),
		CriticalAlerts: bySeverity[models.SeverityCritical],
		AvgRisk:        e.store.AvgRisk(),
		UptimeSeconds:  int64(now.Sub(e.startedAt).Seconds()),
	}
}

func monitorDetails(e *models.VitalEvent, anomalies []string) string {
	hr := "--"
	if e.HR != nil {
		hr = fmt.Sprintf("%d bpm", *e.HR)
	}
	spo2 := "--"
	if e.SpO2 != nil {
		spo2 = fmt.Sprintf("%d%%", *e.SpO2)
	}
	base := fmt.Sprintf("Patient %s | HR: %s | SpO2: %s | Steps: %d",
		models.PostureName(e.Posture), hr, spo2, e.Steps)
	if len(anomalies) > 0 {
		return fmt.Sprintf("%s | Anomalies: %s", base, strings.Join(anomalies, ", "))
	}
	return base
}
