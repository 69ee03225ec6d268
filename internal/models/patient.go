package models

import "time"

// LatestVitals 最近一次生命体征（API 返回格式，编码已转换为显示名称）
type LatestVitals struct {
	HR      *int   `json:"HR"`
	SpO2    *int   `json:"SpO2"`
	Posture string `json:"Posture"`
	Area    string `json:"Area"`
	Steps   int    `json:"Steps"`
}

// PatientSnapshot 患者状态快照（只读，聚合引擎 Apply 时拷贝生成）
type PatientSnapshot struct {
	DeviceID     string        `json:"device_id"`
	RiskScore    float64       `json:"risk_score"`
	DataPoints   int64         `json:"data_points"`
	RecentAlerts int           `json:"recent_alerts"`
	Patterns     []string      `json:"patterns"`
	LastUpdate   *time.Time    `json:"last_update"`
	LatestData   *LatestVitals `json:"latest_data"`
}

// Stats 系统级统计（按需纯计算，不持久化）
type Stats struct {
	TotalPatients  int     `json:"total_patients"`
	ActivePatients int     `json:"active_patients"`
	TotalAlerts    int     `json:"total_alerts"`
	CriticalAlerts int     `json:"critical_alerts"`
	AvgRisk        float64 `json:"avg_risk"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
}
