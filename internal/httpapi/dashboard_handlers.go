package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"medicore-dashboard/internal/models"

	"go.uber.org/zap"
)

// Dashboard 聚合引擎的读侧接口（handler 只读状态，不做写入）
type Dashboard interface {
	PatientStates() map[string]models.PatientSnapshot
	PatientSnapshot(deviceID string) (models.PatientSnapshot, bool)
	RecentEvents(deviceID string) []models.VitalEvent
	Alerts() []models.Alert
	AcknowledgeAlert(alertID string) (bool, error)
	Timeline() []models.AgentActivity
	ActiveFlowNodes(now time.Time) []string
	Stats(now time.Time) models.Stats
}

// DashboardHandler 实现 dashboard 前端所需的查询接口
type DashboardHandler struct {
	engine Dashboard
	logger *zap.Logger
}

func NewDashboardHandler(engine Dashboard, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{engine: engine, logger: logger}
}

// GET /api/v1/patient-states
func (h *DashboardHandler) GetPatientStates(w http.ResponseWriter, r *http.Request) {
	states := h.engine.PatientStates()
	writeJSON(w, http.StatusOK, Ok(states))
}

// GET /api/v1/patient-detail/{device_id}
// 返回快照 + 最近窗口读数（detail 面板用）
func (h *DashboardHandler) GetPatientDetail(w http.ResponseWriter, r *http.Request, deviceID string) {
	snap, ok := h.engine.PatientSnapshot(deviceID)
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("patient not found: "+deviceID))
		return
	}

	type detail struct {
		models.PatientSnapshot
		RecentReadings []models.VitalEvent `json:"recent_readings"`
	}
	writeJSON(w, http.StatusOK, Ok(detail{
		PatientSnapshot: snap,
		RecentReadings:  h.engine.RecentEvents(deviceID),
	}))
}

// GET /api/v1/active-alerts?limit=N
func (h *DashboardHandler) GetActiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.Alerts()
	if limit := parseInt(r.URL.Query().Get("limit"), 0); limit > 0 && limit < len(alerts) {
		alerts = alerts[:limit]
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// POST /api/v1/alerts/{alert_id}/acknowledge
func (h *DashboardHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request, alertID string) {
	changed, err := h.engine.AcknowledgeAlert(alertID)
	if err != nil {
		if errors.Is(err, models.ErrAlertNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("alert not found: "+alertID))
			return
		}
		h.logger.Error("Acknowledge alert failed", zap.String("alert_id", alertID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("acknowledge failed"))
		return
	}

	type ackResult struct {
		AlertID string `json:"alert_id"`
		Changed bool   `json:"changed"`
	}
	writeJSON(w, http.StatusOK, Ok(ackResult{AlertID: alertID, Changed: changed}))
}

// GET /api/v1/agent-activity
func (h *DashboardHandler) GetAgentActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.engine.Timeline()))
}

// GET /api/v1/flow-nodes
func (h *DashboardHandler) GetFlowNodes(w http.ResponseWriter, r *http.Request) {
	type flowResult struct {
		ActiveNodes []string `json:"active_nodes"`
	}
	writeJSON(w, http.StatusOK, Ok(flowResult{ActiveNodes: h.engine.ActiveFlowNodes(time.Now())}))
}

// GET /api/v1/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.engine.Stats(time.Now())))
}

// GET /healthz
func (h *DashboardHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
