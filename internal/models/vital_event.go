package models

import (
	"encoding/json"
	"errors"
	"time"
)

// 事件校验错误（消费端记录 warning 后跳过，不中断摄取）
var (
	ErrMissingDeviceID  = errors.New("vital event: missing device_id")
	ErrMissingTimestamp = errors.New("vital event: missing timestamp")
)

// 姿态编码（与设备端传感器协议保持一致）
const (
	PostureUnknown         = 0
	PostureSitting         = 1
	PostureStanding        = 2
	PostureLying           = 3
	PostureLyingRightSide  = 4
	PostureFalling         = 5
	PostureProne           = 6
	PostureLyingLeftSide   = 7
	PostureWalking         = 8
	PostureUnstableTemp    = 10
	PostureUprightTorso    = 11
)

// 区域编码
const (
	AreaUnknown     = 0
	AreaUnknownArea = 1
	AreaLaboratory  = 2
	AreaCorridor    = 3
	AreaDiningTable = 4
	AreaLivingRoom  = 5
	AreaBathroom    = 6
	AreaBedroom     = 7
)

// PostureMap 姿态编码 → 显示名称
var PostureMap = map[int]string{
	PostureUnknown:        "Unknown",
	PostureSitting:        "Sitting",
	PostureStanding:       "Standing",
	PostureLying:          "Lying Down",
	PostureLyingRightSide: "Lying on Right Side",
	PostureFalling:        "Falling",
	PostureProne:          "Prone",
	PostureLyingLeftSide:  "Lying on Left Side",
	PostureWalking:        "Walking",
	PostureUnstableTemp:   "Unstable Temp",
	PostureUprightTorso:   "Upright Torso",
}

// AreaMap 区域编码 → 显示名称
var AreaMap = map[int]string{
	AreaUnknownArea: "Unknown Area",
	AreaLaboratory:  "Laboratory",
	AreaCorridor:    "Corridor",
	AreaDiningTable: "Dining Table",
	AreaLivingRoom:  "Living Room",
	AreaBathroom:    "Bathroom",
	AreaBedroom:     "Bedroom",
}

// PostureName 返回姿态显示名称（未知编码返回 "Unknown"）
func PostureName(code int) string {
	if name, ok := PostureMap[code]; ok {
		return name
	}
	return "Unknown"
}

// AreaName 返回区域显示名称
func AreaName(code int) string {
	if name, ok := AreaMap[code]; ok {
		return name
	}
	return "Unknown"
}

// VitalEvent 单条设备生命体征事件（不可变输入）
// HR/SpO2 为 nil 表示该字段缺失（前端渲染占位符，不参与风险计算）
type VitalEvent struct {
	DeviceID    string    `json:"device_id"`
	Timestamp   time.Time `json:"timestamp"`
	HR          *int      `json:"hr,omitempty"`
	SpO2        *int      `json:"spo2,omitempty"`
	Posture     int       `json:"posture"`
	Area        int       `json:"area"`
	Steps       int       `json:"steps"`
	SafeBattery *int      `json:"safe_battery,omitempty"`
	BandBattery *int      `json:"band_battery,omitempty"`
}

// rawVitalRecord 设备端/模拟器的原始 JSON 格式
// 兼容两种 device_id 字段写法和历史遗留的 Lokasi 字段
type rawVitalRecord struct {
	DeviceID     string   `json:"device_id"`
	DeviceIDAlt  string   `json:"device_ID,omitempty"`
	TimestampMs  int64    `json:"timestamp"`
	HR           *float64 `json:"HR"`
	BloodOxygen  *float64 `json:"Blood_oxygen"`
	PostureState *int     `json:"Posture_state"`
	Area         *int     `json:"Area"`
	Lokasi       *int     `json:"Lokasi"`
	Step         *int     `json:"Step"`
	SafeBattery  *int     `json:"safe_battery"`
	BandBattery  *int     `json:"band_battery"`
}

// ParseVitalEvent 解析原始传感器 JSON 为 VitalEvent
// 缺失 device_id 或 timestamp 返回错误；数值字段越界则钳制到生理合理范围
func ParseVitalEvent(data []byte) (*VitalEvent, error) {
	var raw rawVitalRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.toEvent()
}

func (r *rawVitalRecord) toEvent() (*VitalEvent, error) {
	deviceID := r.DeviceID
	if deviceID == "" {
		deviceID = r.DeviceIDAlt
	}
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	if r.TimestampMs <= 0 {
		return nil, ErrMissingTimestamp
	}

	e := &VitalEvent{
		DeviceID:    deviceID,
		Timestamp:   time.UnixMilli(r.TimestampMs).UTC(),
		SafeBattery: r.SafeBattery,
		BandBattery: r.BandBattery,
	}

	if r.HR != nil {
		hr := ClampHR(int(*r.HR))
		e.HR = &hr
	}
	if r.BloodOxygen != nil {
		spo2 := ClampSpO2(int(*r.BloodOxygen))
		e.SpO2 = &spo2
	}
	if r.PostureState != nil {
		e.Posture = *r.PostureState
	}
	if r.Area != nil {
		e.Area = *r.Area
	} else if r.Lokasi != nil {
		e.Area = *r.Lokasi
	}
	if r.Step != nil && *r.Step > 0 {
		e.Steps = *r.Step
	}

	return e, nil
}

// MarshalRaw 序列化为设备端原始 JSON 格式（模拟器发布用）
func (e *VitalEvent) MarshalRaw() ([]byte, error) {
	raw := rawVitalRecord{
		DeviceID:    e.DeviceID,
		TimestampMs: e.Timestamp.UnixMilli(),
		SafeBattery: e.SafeBattery,
		BandBattery: e.BandBattery,
	}
	if e.HR != nil {
		hr := float64(*e.HR)
		raw.HR = &hr
	}
	if e.SpO2 != nil {
		spo2 := float64(*e.SpO2)
		raw.BloodOxygen = &spo2
	}
	posture := e.Posture
	raw.PostureState = &posture
	area := e.Area
	raw.Area = &area
	if e.Steps > 0 {
		steps := e.Steps
		raw.Step = &steps
	}
	return json.Marshal(raw)
}

// ClampHR 钳制心率到生理合理范围 [0, 300]
func ClampHR(hr int) int {
	if hr < 0 {
		return 0
	}
	if hr > 300 {
		return 300
	}
	return hr
}

// ClampSpO2 钳制血氧到 [0, 100]
func ClampSpO2(spo2 int) int {
	if spo2 < 0 {
		return 0
	}
	if spo2 > 100 {
		return 100
	}
	return spo2
}
