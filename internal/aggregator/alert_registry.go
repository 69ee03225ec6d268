package aggregator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medicore-dashboard/internal/models"
)

// 告警阈值：风险分数向上穿越该值时创建告警
const AlertRiskThreshold = 0.7

// 穿越时按分数划分严重等级
const (
	severityCriticalFloor = 0.85
	severityMediumFloor   = 0.75
)

// AlertRegistry 告警注册表
// 只在风险分数向上穿越阈值时创建告警：同一次持续超阈不重复告警，
// 回落后再次穿越则创建新告警。告警保持 active 直到显式 Acknowledge。
type AlertRegistry struct {
	mu       sync.RWMutex
	alerts   []models.Alert // 最新在前
	byID     map[string]int
	above    map[string]bool // device_id → 当前是否处于阈值之上
}

// NewAlertRegistry 创建告警注册表
func NewAlertRegistry() *AlertRegistry {
	return &AlertRegistry{
		byID:  make(map[string]int),
		above: make(map[string]bool),
	}
}

// Evaluate 评估设备当前风险分数，必要时创建告警
// 幂等：同一状态重复评估不会产生重复告警
func (r *AlertRegistry) Evaluate(deviceID string, risk float64, anomalies []string, now time.Time) *models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasAbove := r.above[deviceID]
	isAbove := risk >= AlertRiskThreshold
	r.above[deviceID] = isAbove

	if !isAbove || wasAbove {
		return nil
	}

	alert := models.Alert{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		Severity:  severityForScore(risk),
		Status:    models.AlertStatusActive,
		Message:   buildAlertMessage(risk, anomalies),
		RiskScore: risk,
		CreatedAt: now,
	}

	r.alerts = append([]models.Alert{alert}, r.alerts...)
	r.reindex()

	return &alert
}

// List 返回全部告警，最新在前（拷贝）
func (r *AlertRegistry) List() []models.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// CountBySeverity 按严重等级统计告警数
func (r *AlertRegistry) CountBySeverity() map[models.Severity]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Severity]int)
	for _, a := range r.alerts {
		counts[a.Severity]++
	}
	return counts
}

// ActiveCount 返回指定设备的 active 告警数（即患者卡片上的 recent_alerts）
func (r *AlertRegistry) ActiveCount(deviceID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.alerts {
		if a.DeviceID == deviceID && a.Status == models.AlertStatusActive {
			count++
		}
	}
	return count
}

// Total 返回告警总数
func (r *AlertRegistry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts)
}

// Acknowledge 确认告警（显式清除事件）
// 确认后不再计入患者的 recent_alerts
func (r *AlertRegistry) Acknowledge(alertID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[alertID]
	if !ok {
		return false, fmt.Errorf("%w: %s", models.ErrAlertNotFound, alertID)
	}
	if r.alerts[idx].Status == models.AlertStatusAcknowledged {
		return false, nil
	}
	r.alerts[idx].Status = models.AlertStatusAcknowledged
	return true, nil
}

func (r *AlertRegistry) reindex() {
	for i, a := range r.alerts {
		r.byID[a.ID] = i
	}
}

func severityForScore(risk float64) models.Severity {
	switch {
	case risk >= severityCriticalFloor:
		return models.SeverityCritical
	case risk >= severityMediumFloor:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func buildAlertMessage(risk float64, anomalies []string) string {
	severity := severityForScore(risk)

	var prefix string
	switch severity {
	case models.SeverityCritical:
		prefix = "CRITICAL ALERT"
	case models.SeverityMedium:
		prefix = "WARNING"
	default:
		prefix = "INFO"
	}

	if len(anomalies) == 0 {
		return fmt.Sprintf("%s: risk score %.2f exceeded threshold", prefix, risk)
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(anomalies, ", "))
}
