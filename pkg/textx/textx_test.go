package textx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTextStripsControlChars(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("hello\x00 world\x1b"))
	assert.Equal(t, "line1\nline2", SanitizeText("  line1\nline2  "))
	assert.Equal(t, "", SanitizeText("\x00\x01"))
}

func TestTruncateShortTextUnchanged(t *testing.T) {
	text := strings.Repeat("あ", 1000)
	assert.Equal(t, text, TruncateSourcePreview(text))
}

func TestTruncatePrefersLastBreakBeforeLimit(t *testing.T) {
	// Newline at rune 991, tail past the limit.
	text := strings.Repeat("a", 990) + "\n" + strings.Repeat("b", 300)
	truncated := TruncateSourcePreview(text)
	assert.Equal(t, 991, len([]rune(truncated)))
	assert.True(t, strings.HasSuffix(truncated, "\n"))
}

func TestTruncateFallsBackToLookaheadBreak(t *testing.T) {
	// First break is 5 runes past the limit, within the 200-rune lookahead.
	text := strings.Repeat("c", 1005) + "。" + strings.Repeat("d", 100)
	truncated := TruncateSourcePreview(text)
	assert.True(t, strings.HasSuffix(truncated, "。"))
	assert.LessOrEqual(t, len([]rune(truncated)), 1200)
}

func TestTruncateHardLimitWithoutBreaks(t *testing.T) {
	text := strings.Repeat("x", 2000)
	truncated := TruncateSourcePreview(text)
	assert.Equal(t, 1000, len([]rune(truncated)))
}

func TestTruncateBreakBeyondLookaheadIgnored(t *testing.T) {
	// The only break is past the lookahead window: cut at the hard limit.
	text := strings.Repeat("y", 1500) + "." + strings.Repeat("z", 10)
	truncated := TruncateSourcePreview(text)
	assert.Equal(t, 1000, len([]rune(truncated)))
}

func TestTruncateAlwaysCutsOnRuneBoundary(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 300)
	truncated := TruncateSourcePreview(text)
	// A clean rune boundary round-trips through []rune.
	assert.Equal(t, truncated, string([]rune(truncated)))
	assert.Equal(t, 1000, len([]rune(truncated)))
}
