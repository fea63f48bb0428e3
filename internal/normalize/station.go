package normalize

import "strings"

// NormalizeStation trims the station name and guarantees the 駅 suffix.
// Empty input yields "".
func NormalizeStation(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, "駅") {
		return trimmed
	}
	return trimmed + "駅"
}
