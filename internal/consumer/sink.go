package consumer

import "medicore-dashboard/internal/models"

// EventSink 事件下游（由聚合引擎实现）
type EventSink interface {
	Apply(event *models.VitalEvent) (models.PatientSnapshot, []models.AgentActivity, error)
}
