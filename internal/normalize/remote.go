package normalize

import "strings"

// RemoteOnsiteModes is the canonical remote-mode enum.
var RemoteOnsiteModes = []string{"フル出社", "リモート併用", "フルリモート"}

// NormalizeRemoteOnsite always returns one of the three canonical modes,
// defaulting to リモート併用 when nothing else matches.
func NormalizeRemoteOnsite(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "リモート併用"
	}

	for _, valid := range RemoteOnsiteModes {
		if trimmed == valid {
			return trimmed
		}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "フルリモート"), strings.Contains(lower, "完全リモート"),
		strings.Contains(lower, "フルリモ"), strings.Contains(lower, "full remote"):
		return "フルリモート"
	case strings.Contains(lower, "フル出社"), strings.Contains(lower, "出社のみ"),
		strings.Contains(lower, "常駐"), strings.Contains(lower, "客先"),
		strings.Contains(lower, "出社必須"):
		return "フル出社"
	}
	return "リモート併用"
}

// CorrectRemoteOnsite returns "" when no confident mapping exists.
func CorrectRemoteOnsite(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	for _, valid := range RemoteOnsiteModes {
		if trimmed == valid {
			return trimmed
		}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "フルリモート"), strings.Contains(lower, "完全リモート"),
		strings.Contains(lower, "フルリモ"):
		return "フルリモート"
	case strings.Contains(lower, "フル出社"), strings.Contains(lower, "出社"),
		strings.Contains(lower, "常駐"), strings.Contains(lower, "客先"):
		return "フル出社"
	case strings.Contains(lower, "リモート"), strings.Contains(lower, "併用"),
		strings.Contains(lower, "ハイブリッド"), strings.Contains(lower, "一部"):
		return "リモート併用"
	}
	return ""
}
