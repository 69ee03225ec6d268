package aggregator_test

import (
	"testing"
	"time"

	agg "medicore-dashboard/internal/aggregator"
	"medicore-dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func TestFlowVisualizer_AgentNodeExpiresAfter2000ms(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	f.Activate("flow-monitor", t0)

	require.True(t, f.IsActive("flow-monitor", t0.Add(1999*time.Millisecond)))
	require.False(t, f.IsActive("flow-monitor", t0.Add(2001*time.Millisecond)))
}

func TestFlowVisualizer_DataPathNodeExpiresAfter1500ms(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	f.Activate("flow-store", t0)

	require.True(t, f.IsActive("flow-store", t0.Add(1499*time.Millisecond)))
	require.False(t, f.IsActive("flow-store", t0.Add(1501*time.Millisecond)))
}

func TestFlowVisualizer_ReactivationResetsDuration(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	f.Activate("flow-alert", t0)
	// 1.5 秒后再次激活：过期时间重置，不叠加
	f.Activate("flow-alert", t0.Add(1500*time.Millisecond))

	require.True(t, f.IsActive("flow-alert", t0.Add(3400*time.Millisecond)))
	require.False(t, f.IsActive("flow-alert", t0.Add(3600*time.Millisecond)))
}

func TestFlowVisualizer_ObserveLightsAgentNode(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	activity := models.NewActivity(models.AgentPredictor, "Deterioration risk rising", models.StatusRunning, "device-1", "", t0)
	f.Observe(activity, t0)

	require.Equal(t, []string{"flow-predictor"}, f.Active(t0.Add(time.Millisecond)))
}

func TestFlowVisualizer_SensorDataActionLightsDataPathGroup(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	activity := models.NewActivity(
		models.AgentMonitor,
		"Analyzing real-time sensor data from Bedroom",
		models.StatusSuccess,
		"device-1",
		"",
		t0,
	)
	f.Observe(activity, t0)

	active := f.Active(t0.Add(time.Millisecond))
	require.ElementsMatch(t, []string{"flow-monitor", "flow-store", "flow-listener", "flow-state"}, active)

	// 数据通路组先于 Agent 节点过期
	active = f.Active(t0.Add(1700 * time.Millisecond))
	require.Equal(t, []string{"flow-monitor"}, active)
}

func TestFlowVisualizer_ActiveCleansExpired(t *testing.T) {
	f := agg.NewFlowVisualizer()
	t0 := time.Now()

	f.Activate("flow-monitor", t0)
	f.Activate("flow-analyzer", t0)

	require.Len(t, f.Active(t0.Add(time.Millisecond)), 2)
	require.Empty(t, f.Active(t0.Add(3*time.Second)))
}
