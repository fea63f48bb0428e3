package normalize

import "strings"

// IsJapaneseNationality reports whether the value names Japanese
// nationality (日本 variants, "japan"/"japanese", case-insensitive).
func IsJapaneseNationality(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}

	normalized := strings.ToLower(trimmed)
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '　':
			return -1
		}
		return r
	}, normalized)

	return strings.Contains(normalized, "日本") || strings.Contains(normalized, "japan")
}
