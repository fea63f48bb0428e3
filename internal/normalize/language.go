package normalize

import "strings"

// JapaneseSkillLevels is the ordinal Japanese scale (不要=0 … ネイティブ=6).
var JapaneseSkillLevels = []string{"不要", "N5", "N4", "N3", "N2", "N1", "ネイティブ"}

// EnglishSkillLevels is the ordinal English scale (不要=0 … ネイティブ=5).
var EnglishSkillLevels = []string{"不要", "読み書き", "会話", "ビジネス", "上級ビジネス", "ネイティブ"}

// CorrectJapaneseSkill maps free text to the Japanese enum; "" when unknown.
func CorrectJapaneseSkill(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	for _, valid := range JapaneseSkillLevels {
		if trimmed == valid {
			return trimmed
		}
	}

	upper := strings.ToUpper(trimmed)
	switch {
	case strings.Contains(upper, "N1"), strings.Contains(trimmed, "ビジネス"):
		return "N1"
	case strings.Contains(upper, "N2"):
		return "N2"
	case strings.Contains(upper, "N3"):
		return "N3"
	case strings.Contains(upper, "N4"):
		return "N4"
	case strings.Contains(upper, "N5"):
		return "N5"
	case strings.Contains(trimmed, "ネイティブ"), strings.Contains(trimmed, "母語"), strings.Contains(trimmed, "母国語"):
		return "ネイティブ"
	case strings.Contains(trimmed, "不要"), strings.Contains(trimmed, "不問"):
		return "不要"
	}
	return ""
}

// JapaneseSkillLevel returns the ordinal for a canonical Japanese level,
// or -1 for unknown input.
func JapaneseSkillLevel(skill string) int {
	for i, v := range JapaneseSkillLevels {
		if strings.TrimSpace(skill) == v {
			return i
		}
	}
	return -1
}

// IsJapaneseKO evaluates the Japanese-language knockout.
// Returns (ko, known): known=false means the information is insufficient.
// A requirement of 不要 always passes; an unknown requirement passes.
func IsJapaneseKO(projectRequired, talentLevel *string) (ko, known bool) {
	if projectRequired == nil {
		return false, false
	}
	req := JapaneseSkillLevel(*projectRequired)
	if req < 0 {
		return false, false
	}
	if req == 0 {
		return false, true
	}
	if talentLevel == nil {
		return false, false
	}
	tal := JapaneseSkillLevel(*talentLevel)
	if tal < 0 {
		return false, false
	}
	return tal < req, true
}

// CorrectEnglishSkill maps free text to the English enum; "" when unknown.
func CorrectEnglishSkill(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	for _, valid := range EnglishSkillLevels {
		if trimmed == valid {
			return trimmed
		}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(trimmed, "ネイティブ"), strings.Contains(lower, "native"):
		return "ネイティブ"
	case strings.Contains(trimmed, "上級ビジネス"), strings.Contains(lower, "advanced business"), strings.Contains(lower, "fluent"):
		return "上級ビジネス"
	case strings.Contains(trimmed, "ビジネス"), strings.Contains(lower, "business"):
		return "ビジネス"
	case strings.Contains(trimmed, "会話"), strings.Contains(lower, "conversation"), strings.Contains(lower, "speaking"):
		return "会話"
	case strings.Contains(trimmed, "読み書き"), strings.Contains(lower, "reading"), strings.Contains(lower, "writing"):
		return "読み書き"
	case strings.Contains(trimmed, "不要"), strings.Contains(trimmed, "不問"), strings.Contains(lower, "none"):
		return "不要"
	}
	return ""
}

// EnglishSkillLevel returns the ordinal for a canonical English level,
// or -1 for unknown input.
func EnglishSkillLevel(skill string) int {
	for i, v := range EnglishSkillLevels {
		if skill == v {
			return i
		}
	}
	return -1
}

// IsEnglishKO evaluates the English-language knockout. A missing or 不要
// requirement passes; a requirement with no talent level is a knockout.
func IsEnglishKO(projectRequired, talentLevel *string) bool {
	if projectRequired == nil || *projectRequired == "不要" {
		return false
	}
	if talentLevel == nil {
		return true
	}
	return EnglishSkillLevel(*talentLevel) < EnglishSkillLevel(*projectRequired)
}
