package aggregator

import (
	"fmt"

	"medicore-dashboard/internal/models"
)

// 生命体征阈值
const (
	AbnormalHRLow    = 45
	AbnormalHRHigh   = 110
	SevereHRHigh     = 120
	HypoxiaThreshold = 90
	SevereHypoxia    = 85
	LowSpO2          = 95
)

// 风险分量权重
// 单项分量有界，总分截断到 [0,1]；仅由最新一条数据决定，与历史顺序无关
const (
	riskHRSevere      = 0.30
	riskHRAbnormal    = 0.25
	riskHRBorderline  = 0.15
	riskSpO2Severe    = 0.40
	riskSpO2Hypoxia   = 0.30
	riskSpO2Low       = 0.15
	riskPostureFall   = 0.50
	riskPostureProne  = 0.15
	riskPostureLying  = 0.10
	riskContextHigh   = 0.15
	riskContextMedium = 0.10
)

// ComputeRisk 根据最新生命体征计算风险分数
// 确定性：相同输入恒得相同输出；饱和到 [0,1]
func ComputeRisk(e *models.VitalEvent) float64 {
	if e == nil {
		return 0
	}

	risk := hrRisk(e.HR) + spo2Risk(e.SpO2) + postureRisk(e.Posture) + contextRisk(e)
	if risk > 1 {
		return 1
	}
	if risk < 0 {
		return 0
	}
	return risk
}

func hrRisk(hr *int) float64 {
	if hr == nil || *hr == 0 {
		return 0
	}
	switch {
	case *hr < AbnormalHRLow:
		return riskHRSevere
	case *hr < 60:
		return riskHRBorderline
	case *hr >= SevereHRHigh:
		return riskHRSevere
	case *hr > AbnormalHRHigh:
		return riskHRAbnormal
	default:
		return 0
	}
}

func spo2Risk(spo2 *int) float64 {
	if spo2 == nil || *spo2 == 0 {
		return 0
	}
	switch {
	case *spo2 < SevereHypoxia:
		return riskSpO2Severe
	case *spo2 < HypoxiaThreshold:
		return riskSpO2Hypoxia
	case *spo2 < LowSpO2:
		return riskSpO2Low
	default:
		return 0
	}
}

func postureRisk(posture int) float64 {
	switch posture {
	case models.PostureFalling:
		return riskPostureFall
	case models.PostureProne:
		return riskPostureProne
	case models.PostureLying, models.PostureLyingLeftSide, models.PostureLyingRightSide:
		return riskPostureLying
	default:
		return 0
	}
}

// contextRisk 位置与姿态组合的情境风险
func contextRisk(e *models.VitalEvent) float64 {
	lying := isLyingPosture(e.Posture) || e.Posture == models.PostureFalling

	if e.Area == models.AreaBathroom && lying {
		return riskContextHigh
	}
	if e.Area == models.AreaCorridor && isLyingPosture(e.Posture) {
		return riskContextMedium
	}
	if e.HR != nil && *e.HR > AbnormalHRHigh && e.Posture == models.PostureSitting {
		return riskContextMedium
	}
	return 0
}

func isLyingPosture(posture int) bool {
	switch posture {
	case models.PostureLying, models.PostureLyingLeftSide, models.PostureLyingRightSide, models.PostureProne:
		return true
	default:
		return false
	}
}

// DetectAnomalies 返回最新数据中的异常描述（用于告警消息和 Monitor 活动）
func DetectAnomalies(e *models.VitalEvent) []string {
	if e == nil {
		return nil
	}

	var anomalies []string

	if e.Posture == models.PostureFalling {
		anomalies = append(anomalies, fmt.Sprintf("FALL DETECTED in %s", models.AreaName(e.Area)))
	}
	if e.HR != nil && *e.HR > 0 {
		if *e.HR < AbnormalHRLow {
			anomalies = append(anomalies, fmt.Sprintf("BRADYCARDIA (HR=%d)", *e.HR))
		} else if *e.HR > AbnormalHRHigh {
			anomalies = append(anomalies, fmt.Sprintf("TACHYCARDIA (HR=%d)", *e.HR))
		}
	}
	if e.SpO2 != nil && *e.SpO2 > 0 && *e.SpO2 < HypoxiaThreshold {
		anomalies = append(anomalies, fmt.Sprintf("HYPOXIA (SpO2=%d%%)", *e.SpO2))
	}
	if e.Area == models.AreaBathroom && isLyingPosture(e.Posture) {
		anomalies = append(anomalies, "Patient lying in bathroom")
	} else if e.Area == models.AreaCorridor && isLyingPosture(e.Posture) {
		anomalies = append(anomalies, "Patient lying in corridor")
	}

	return anomalies
}
