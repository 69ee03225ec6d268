package aggregator

import (
	"medicore-dashboard/internal/models"
)

// 模式检测的滚动窗口大小与模式标签上限
const (
	patternWindowSize = 10
	maxPatternLabels  = 20
)

// 模式标签
const (
	PatternHRUpwardTrend     = "hr_upward_trend"
	PatternSpO2DownwardTrend = "spo2_downward_trend"
	PatternFallDetected      = "fall_detected"
	PatternSedentaryHighHR   = "sedentary_high_hr"
)

// detectPatterns 在短滚动窗口上检测模式，返回新出现的模式标签
// window 为该设备最近的事件序列（最旧在前，含当前事件）
func detectPatterns(window []models.VitalEvent, existing []string) []string {
	if len(window) == 0 {
		return nil
	}
	latest := &window[len(window)-1]

	var detected []string

	if latest.Posture == models.PostureFalling {
		detected = append(detected, PatternFallDetected)
	}
	if latest.HR != nil && *latest.HR > AbnormalHRHigh && latest.Posture == models.PostureSitting {
		detected = append(detected, PatternSedentaryHighHR)
	}
	if hasRisingTrend(hrSeries(window)) {
		detected = append(detected, PatternHRUpwardTrend)
	}
	if hasFallingTrend(spo2Series(window)) {
		detected = append(detected, PatternSpO2DownwardTrend)
	}

	// 只报告相对上一轮新增的模式（连续相同不重复追加）
	var fresh []string
	for _, label := range detected {
		if !lastMatches(existing, label) {
			fresh = append(fresh, label)
		}
	}
	return fresh
}

// hasRisingTrend 最近 3 个值严格递增且末值超出正常上限
func hasRisingTrend(values []int) bool {
	n := len(values)
	if n < 3 {
		return false
	}
	a, b, c := values[n-3], values[n-2], values[n-1]
	return a < b && b < c && c > 100
}

// hasFallingTrend 最近 3 个值严格递减且末值低于 95
func hasFallingTrend(values []int) bool {
	n := len(values)
	if n < 3 {
		return false
	}
	a, b, c := values[n-3], values[n-2], values[n-1]
	return a > b && b > c && c < LowSpO2
}

func hrSeries(window []models.VitalEvent) []int {
	out := make([]int, 0, len(window))
	for _, e := range window {
		if e.HR != nil && *e.HR > 0 {
			out = append(out, *e.HR)
		}
	}
	return out
}

func spo2Series(window []models.VitalEvent) []int {
	out := make([]int, 0, len(window))
	for _, e := range window {
		if e.SpO2 != nil && *e.SpO2 > 0 {
			out = append(out, *e.SpO2)
		}
	}
	return out
}

// lastMatches 检查标签序列的末尾是否已是同一标签
func lastMatches(labels []string, label string) bool {
	return len(labels) > 0 && labels[len(labels)-1] == label
}
