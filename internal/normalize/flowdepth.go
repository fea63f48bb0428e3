package normalize

import (
	"math"
	"strings"
)

// FlowDepthUnlimited marks a flow limit of 商流制限なし.
const FlowDepthUnlimited = math.MaxInt32

// Project flow enum values (不明 excluded from persisted values).
var projectFlowDepts = []string{"エンド直", "1次請け", "2次請け", "3次請け", "4次請け以上", "不明"}

// CorrectFlowDept canonicalizes a project flow label; unknown inputs map
// to 不明.
func CorrectFlowDept(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "不明"
	}

	for _, valid := range projectFlowDepts {
		if trimmed == valid {
			return trimmed
		}
	}

	switch {
	case strings.Contains(trimmed, "エンド直"):
		return "エンド直"
	case strings.Contains(trimmed, "1次"), strings.Contains(trimmed, "元請"):
		return "1次請け"
	case strings.Contains(trimmed, "2次"):
		return "2次請け"
	case strings.Contains(trimmed, "3次"):
		return "3次請け"
	case strings.Contains(trimmed, "4次"):
		return "4次請け以上"
	}
	return "不明"
}

// CorrectTalentFlowDepth canonicalizes a talent flow label; "" when unknown.
func CorrectTalentFlowDepth(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	switch trimmed {
	case "直", "自社", "貴社直":
		return "直"
	case "1社先", "2社先", "3社先以上":
		return trimmed
	}

	switch {
	case strings.ContainsAny(trimmed, "3３"), strings.Contains(trimmed, "以上"):
		return "3社先以上"
	case strings.ContainsAny(trimmed, "2２"):
		return "2社先"
	case strings.ContainsAny(trimmed, "1１"), strings.Contains(trimmed, "一社"):
		return "1社先"
	}
	return ""
}

// CorrectJinzaiFlowLimit canonicalizes a flow-limit label; "" when unknown.
func CorrectJinzaiFlowLimit(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	switch trimmed {
	case "SPONTO直人材", "SPONTO一社先まで", "商流制限なし":
		return trimmed
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "sponto") && strings.Contains(trimmed, "直"):
		return "SPONTO直人材"
	case strings.Contains(lower, "sponto") && (strings.Contains(trimmed, "1社") || strings.Contains(trimmed, "一社")):
		return "SPONTO一社先まで"
	case strings.Contains(trimmed, "貴社まで"), strings.Contains(trimmed, "御社まで"),
		strings.Contains(trimmed, "直人材"), strings.Contains(trimmed, "貴社社員"):
		return "SPONTO直人材"
	case strings.Contains(trimmed, "制限なし"), strings.Contains(trimmed, "不問"):
		return "商流制限なし"
	}
	return ""
}

// ParseProjectFlowDepth maps a project flow label to its depth (0..4).
// The second return is false when the label is unknown.
func ParseProjectFlowDepth(flowDept string) (int, bool) {
	switch CorrectFlowDept(flowDept) {
	case "エンド直":
		return 0, true
	case "1次請け":
		return 1, true
	case "2次請け":
		return 2, true
	case "3次請け":
		return 3, true
	case "4次請け以上":
		return 4, true
	}
	return 0, false
}

// ParseTalentFlowDepth maps a talent flow label to its depth (0..3).
func ParseTalentFlowDepth(flowDepth string) (int, bool) {
	switch CorrectTalentFlowDepth(flowDepth) {
	case "直":
		return 0, true
	case "1社先":
		return 1, true
	case "2社先":
		return 2, true
	case "3社先以上":
		return 3, true
	}
	return 0, false
}

// ParseFlowLimit maps a flow-limit label to the maximum allowed depth.
// 商流制限なし yields FlowDepthUnlimited.
func ParseFlowLimit(jinzaiFlowLimit string) (int, bool) {
	switch CorrectJinzaiFlowLimit(jinzaiFlowLimit) {
	case "SPONTO直人材":
		return 0, true
	case "SPONTO一社先まで":
		return 1, true
	case "商流制限なし":
		return FlowDepthUnlimited, true
	}
	return 0, false
}
