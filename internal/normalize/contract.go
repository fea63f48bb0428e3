package normalize

import "strings"

// Talent contract type enum values.
var TalentContractTypes = []string{"正社員", "契約社員", "直個人"}

// CorrectTalentContractType canonicalizes a talent contract type. For the
// primary slot an empty input defaults to the individual-contractor value;
// for the secondary slot it yields "".
func CorrectTalentContractType(input string, isPrimary bool) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		if isPrimary {
			return "直個人"
		}
		return ""
	}

	for _, valid := range TalentContractTypes {
		if trimmed == valid {
			return trimmed
		}
	}

	switch {
	case strings.Contains(trimmed, "正社員"):
		return "正社員"
	case strings.Contains(trimmed, "契約"):
		return "契約社員"
	case strings.Contains(trimmed, "個人"), strings.Contains(trimmed, "フリー"):
		return "直個人"
	}

	if isPrimary {
		return "直個人"
	}
	return ""
}

// CorrectGender canonicalizes to 男性/女性/その他・無回答. Always returns a value.
func CorrectGender(input string) string {
	trimmed := strings.TrimSpace(input)

	switch trimmed {
	case "男性", "女性", "その他/無回答":
		return trimmed
	}

	if strings.ContainsRune(trimmed, '男') {
		return "男性"
	}
	if strings.ContainsRune(trimmed, '女') {
		return "女性"
	}
	return "その他/無回答"
}
