package aggregator_test

import (
	"testing"
	"time"

	agg "medicore-dashboard/internal/aggregator"
	"medicore-dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func vitalEvent(deviceID string, hr, spo2 int, posture, area int) *models.VitalEvent {
	e := &models.VitalEvent{
		DeviceID:  deviceID,
		Timestamp: time.Now(),
		Posture:   posture,
		Area:      area,
	}
	if hr > 0 {
		e.HR = intPtr(hr)
	}
	if spo2 > 0 {
		e.SpO2 = intPtr(spo2)
	}
	return e
}

func TestComputeRisk_NormalVitalsScoreZero(t *testing.T) {
	e := vitalEvent("device-1", 75, 98, models.PostureSitting, models.AreaLaboratory)
	require.Equal(t, 0.0, agg.ComputeRisk(e))
}

func TestComputeRisk_Deterministic(t *testing.T) {
	e := vitalEvent("device-1", 115, 88, models.PostureLying, models.AreaBedroom)

	first := agg.ComputeRisk(e)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, agg.ComputeRisk(e))
	}
}

func TestComputeRisk_EmergencySaturatesToOne(t *testing.T) {
	// 跌倒 + 重度心动过速 + 低氧：分量之和超过 1，截断到 1
	e := vitalEvent("device-1", 125, 85, models.PostureFalling, models.AreaBathroom)

	risk := agg.ComputeRisk(e)
	require.Equal(t, 1.0, risk)
}

func TestComputeRisk_MissingVitalsContributeNothing(t *testing.T) {
	e := &models.VitalEvent{
		DeviceID:  "device-1",
		Timestamp: time.Now(),
		Posture:   models.PostureSitting,
		Area:      models.AreaLivingRoom,
	}
	require.Equal(t, 0.0, agg.ComputeRisk(e))
}

func TestComputeRisk_Bradycardia(t *testing.T) {
	e := vitalEvent("device-1", 40, 98, models.PostureSitting, models.AreaBedroom)
	require.InDelta(t, 0.30, agg.ComputeRisk(e), 1e-9)
}

func TestComputeRisk_BathroomLyingContext(t *testing.T) {
	// 卫生间 + 卧姿：姿态 0.10 + 情境 0.15
	e := vitalEvent("device-1", 75, 98, models.PostureLying, models.AreaBathroom)
	require.InDelta(t, 0.25, agg.ComputeRisk(e), 1e-9)
}

func TestComputeRisk_NilEvent(t *testing.T) {
	require.Equal(t, 0.0, agg.ComputeRisk(nil))
}

func TestDetectAnomalies_FallAndHypoxia(t *testing.T) {
	e := vitalEvent("device-1", 125, 85, models.PostureFalling, models.AreaBathroom)

	anomalies := agg.DetectAnomalies(e)
	require.Contains(t, anomalies, "FALL DETECTED in Bathroom")
	require.Contains(t, anomalies, "TACHYCARDIA (HR=125)")
	require.Contains(t, anomalies, "HYPOXIA (SpO2=85%)")
}

func TestDetectAnomalies_NormalVitalsEmpty(t *testing.T) {
	e := vitalEvent("device-1", 75, 98, models.PostureWalking, models.AreaCorridor)
	require.Empty(t, agg.DetectAnomalies(e))
}

func TestDetectAnomalies_LyingInCorridor(t *testing.T) {
	e := vitalEvent("device-1", 70, 97, models.PostureLying, models.AreaCorridor)
	require.Contains(t, agg.DetectAnomalies(e), "Patient lying in corridor")
}
