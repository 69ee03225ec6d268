package aggregator_test

import (
	"testing"
	"time"

	agg "medicore-dashboard/internal/aggregator"
	"medicore-dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAlertRegistry_AlertOnlyOnUpwardCrossing(t *testing.T) {
	r := agg.NewAlertRegistry()
	now := time.Now()

	// 风险序列 0.5 -> 0.8 -> 0.5 -> 0.8：两次向上穿越，恰好两条告警
	scores := []float64{0.5, 0.8, 0.5, 0.8}
	created := 0
	for i, score := range scores {
		if alert := r.Evaluate("device-1", score, nil, now.Add(time.Duration(i)*time.Second)); alert != nil {
			created++
		}
	}

	require.Equal(t, 2, created)
	require.Equal(t, 2, r.Total())
}

func TestAlertRegistry_SustainedAboveThresholdNoDuplicates(t *testing.T) {
	r := agg.NewAlertRegistry()
	now := time.Now()

	require.NotNil(t, r.Evaluate("device-1", 0.9, nil, now))
	for i := 0; i < 5; i++ {
		require.Nil(t, r.Evaluate("device-1", 0.9, nil, now.Add(time.Duration(i)*time.Second)))
	}

	require.Equal(t, 1, r.Total())
}

func TestAlertRegistry_SeverityByScoreAtCrossing(t *testing.T) {
	r := agg.NewAlertRegistry()
	now := time.Now()

	low := r.Evaluate("device-low", 0.72, nil, now)
	require.NotNil(t, low)
	require.Equal(t, models.SeverityLow, low.Severity)

	medium := r.Evaluate("device-med", 0.80, nil, now)
	require.NotNil(t, medium)
	require.Equal(t, models.SeverityMedium, medium.Severity)

	critical := r.Evaluate("device-crit", 0.90, nil, now)
	require.NotNil(t, critical)
	require.Equal(t, models.SeverityCritical, critical.Severity)
}

func TestAlertRegistry_MessageIncludesAnomalies(t *testing.T) {
	r := agg.NewAlertRegistry()

	alert := r.Evaluate("device-1", 0.95, []string{"FALL DETECTED in Bathroom", "HYPOXIA (SpO2=85%)"}, time.Now())
	require.NotNil(t, alert)
	require.Equal(t, "CRITICAL ALERT: FALL DETECTED in Bathroom, HYPOXIA (SpO2=85%)", alert.Message)
}

func TestAlertRegistry_ListNewestFirst(t *testing.T) {
	r := agg.NewAlertRegistry()
	now := time.Now()

	first := r.Evaluate("device-1", 0.8, nil, now)
	require.NotNil(t, first)
	// 回落再穿越
	require.Nil(t, r.Evaluate("device-1", 0.3, nil, now.Add(time.Second)))
	second := r.Evaluate("device-1", 0.9, nil, now.Add(2*time.Second))
	require.NotNil(t, second)

	list := r.List()
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestAlertRegistry_Acknowledge(t *testing.T) {
	r := agg.NewAlertRegistry()

	alert := r.Evaluate("device-1", 0.9, nil, time.Now())
	require.NotNil(t, alert)
	require.Equal(t, 1, r.ActiveCount("device-1"))

	changed, err := r.Acknowledge(alert.ID)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 0, r.ActiveCount("device-1"))

	// 重复确认为幂等
	changed, err = r.Acknowledge(alert.ID)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestAlertRegistry_AcknowledgeUnknownAlert(t *testing.T) {
	r := agg.NewAlertRegistry()

	_, err := r.Acknowledge("no-such-alert")
	require.ErrorIs(t, err, models.ErrAlertNotFound)
}

func TestAlertRegistry_CountBySeverity(t *testing.T) {
	r := agg.NewAlertRegistry()
	now := time.Now()

	require.NotNil(t, r.Evaluate("device-1", 0.9, nil, now))
	require.NotNil(t, r.Evaluate("device-2", 0.8, nil, now))
	require.NotNil(t, r.Evaluate("device-3", 0.95, nil, now))

	counts := r.CountBySeverity()
	require.Equal(t, 2, counts[models.SeverityCritical])
	require.Equal(t, 1, counts[models.SeverityMedium])
}
