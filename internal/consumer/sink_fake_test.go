package consumer_test

import (
	"sync"

	"medicore-dashboard/internal/consumer"
	"medicore-dashboard/internal/models"
)

// fakeSink 仅用于单元测试（记录应用过的事件）
type fakeSink struct {
	mu     sync.Mutex
	events []*models.VitalEvent
	err    error
}

var _ consumer.EventSink = (*fakeSink)(nil)

func (f *fakeSink) Apply(event *models.VitalEvent) (models.PatientSnapshot, []models.AgentActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return models.PatientSnapshot{}, nil, f.err
	}
	f.events = append(f.events, event)
	return models.PatientSnapshot{DeviceID: event.DeviceID}, nil, nil
}

func (f *fakeSink) applied() []*models.VitalEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.VitalEvent(nil), f.events...)
}
