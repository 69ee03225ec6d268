package models

import (
	"errors"
	"time"
)

// ErrAlertNotFound 确认操作引用了不存在的告警
var ErrAlertNotFound = errors.New("alert not found")

// Severity 告警严重等级
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityCritical Severity = "CRITICAL"
)

// 告警状态（active 计入每位患者的 recent_alerts，acknowledged 不计入）
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
)

// Alert 告警记录（由风险分数向上穿越阈值时创建）
type Alert struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Severity  Severity  `json:"severity"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	RiskScore float64   `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}
