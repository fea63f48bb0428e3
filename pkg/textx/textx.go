// Package textx provides small text utilities used across the project.
package textx

import "strings"

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

const (
	sourcePreviewLimit     = 1000
	sourcePreviewLookahead = 200
)

// TruncateSourcePreview cuts a source-text preview near 1000 code points,
// preferring to break on a newline, 。, or period: the last break at or
// before the limit wins, else the first break within a 200-point
// lookahead, else the hard limit. Cuts always land on rune boundaries.
func TruncateSourcePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= sourcePreviewLimit {
		return text
	}

	lastBefore := -1
	firstAfter := -1
	for i := 0; i < len(runes) && i < sourcePreviewLimit+sourcePreviewLookahead; i++ {
		switch runes[i] {
		case '\n', '。', '.':
			if i < sourcePreviewLimit {
				lastBefore = i + 1
			} else if firstAfter == -1 {
				firstAfter = i + 1
			}
		}
	}

	cutoff := sourcePreviewLimit
	if lastBefore != -1 {
		cutoff = lastBefore
	} else if firstAfter != -1 {
		cutoff = firstAfter
	}
	return string(runes[:cutoff])
}
