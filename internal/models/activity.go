package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent 处理流水线中的概念 Agent（仅用于活动归属和流程图可视化）
type Agent int

const (
	AgentMonitor Agent = iota
	AgentAnalyzer
	AgentPredictor
	AgentAlert
	AgentCoordinator
)

// String 返回 Agent 显示名称
func (a Agent) String() string {
	switch a {
	case AgentMonitor:
		return "Monitor Agent"
	case AgentAnalyzer:
		return "Analyzer Agent"
	case AgentPredictor:
		return "Predictor Agent"
	case AgentAlert:
		return "Alert Agent"
	case AgentCoordinator:
		return "Coordinator Agent"
	default:
		return "Unknown Agent"
	}
}

// FlowNode 返回 Agent 对应的流程图节点 ID
// 每个 Agent 变体都有静态保证的映射；ok=false 表示无可视化节点
func (a Agent) FlowNode() (string, bool) {
	switch a {
	case AgentMonitor:
		return "flow-monitor", true
	case AgentAnalyzer:
		return "flow-analyzer", true
	case AgentPredictor:
		return "flow-predictor", true
	case AgentAlert:
		return "flow-alert", true
	case AgentCoordinator:
		return "flow-coordinator", true
	default:
		return "", false
	}
}

// MarshalText 序列化为显示名称（JSON 输出与前端对齐）
func (a Agent) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// 活动状态
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// AgentActivity Agent 活动记录
// DeviceID 为空表示系统级活动（不关联具体设备）
type AgentActivity struct {
	ID        string    `json:"id"`
	Agent     Agent     `json:"agent"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	DeviceID  string    `json:"device_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivity 创建活动记录
func NewActivity(agent Agent, action, status, deviceID, details string, ts time.Time) AgentActivity {
	return AgentActivity{
		ID:        uuid.New().String(),
		Agent:     agent,
		Action:    action,
		Status:    status,
		DeviceID:  deviceID,
		Details:   details,
		Timestamp: ts,
	}
}
