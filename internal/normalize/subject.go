// Package normalize holds the domain value cleaners shared by extraction
// and matching: subjects, prefectures and areas, stations, contract types,
// language levels, remote modes, flow depth, skill aliases, and dates.
// All functions are pure; lookup tables are immutable and built lazily.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
)

var (
	rePrefixOnce sync.Once
	rePrefix     *regexp.Regexp
	reBrackets   *regexp.Regexp
)

func subjectPatterns() (*regexp.Regexp, *regexp.Regexp) {
	rePrefixOnce.Do(func() {
		rePrefix = regexp.MustCompile(`(?i)^(?:(?:RE|FW|FWD|ＲＥ|ＦＷ|ＦＷＤ)\s*[:：]\s*)+`)
		reBrackets = regexp.MustCompile(`^(?:[【\[\(（［〔〈《<{][^】\]\)）］〕〉》>}]*[】\]\)）］〕〉》>}]\s*)+`)
	})
	return rePrefix, reBrackets
}

// NormalizeSubject strips repeated reply/forward prefixes and leading
// bracketed tag groups.
//
// Non-empty contract: if stripping the brackets empties the result, the
// prefix-stripped stage is returned; if that is empty too, the trimmed
// original. Fully empty input yields "".
func NormalizeSubject(subject string) string {
	prefix, brackets := subjectPatterns()

	originalTrimmed := strings.TrimSpace(subject)
	if originalTrimmed == "" {
		return ""
	}

	s1 := strings.TrimSpace(prefix.ReplaceAllString(subject, ""))
	s2 := strings.TrimSpace(brackets.ReplaceAllString(s1, ""))

	switch {
	case s2 != "":
		return s2
	case s1 != "":
		return s1
	default:
		return originalTrimmed
	}
}

// SubjectHash returns the first 16 hex chars of SHA-256 over the
// normalized subject.
func SubjectHash(subject string) string {
	sum := sha256.Sum256([]byte(NormalizeSubject(subject)))
	return hex.EncodeToString(sum[:])[:16]
}
