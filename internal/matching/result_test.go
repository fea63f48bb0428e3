package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func passResult() KnockoutResult {
	return NewKnockoutResult([]NamedDecision{
		{Name: "tanka", Decision: KoDecision{Kind: Pass}},
		{Name: "location", Decision: KoDecision{Kind: Pass}},
	})
}

func TestVerdictHardKoZeroesScore(t *testing.T) {
	ko := NewKnockoutResult([]NamedDecision{
		{Name: "location", Decision: KoDecision{Kind: SoftKo, Reason: "遠方"}},
		{Name: "tanka", Decision: KoDecision{Kind: HardKo, Reason: "利益不足"}},
	})

	verdict := NewMatchVerdict(ko, 0.8, DefaultMatchConfig())
	assert.Equal(t, 0.0, verdict.Score)
	assert.False(t, verdict.AutoMatchEligible)
	assert.True(t, verdict.ManualReviewRequired)
	assert.Len(t, verdict.KoReasons, 2)
}

func TestVerdictAutoMatchAboveThreshold(t *testing.T) {
	verdict := NewMatchVerdict(passResult(), 0.95, DefaultMatchConfig())
	assert.True(t, verdict.AutoMatchEligible)
	assert.False(t, verdict.ManualReviewRequired)
}

func TestVerdictWithinMarginRequiresReview(t *testing.T) {
	cfg := DefaultMatchConfig() // threshold 0.7, margin 0.1

	// 0.75 is within [0.6, 0.8]: review required, not auto-match.
	verdict := NewMatchVerdict(passResult(), 0.75, cfg)
	assert.True(t, verdict.ManualReviewRequired)
	assert.False(t, verdict.AutoMatchEligible)

	// 0.81 clears the margin.
	verdict = NewMatchVerdict(passResult(), 0.81, cfg)
	assert.False(t, verdict.ManualReviewRequired)
	assert.True(t, verdict.AutoMatchEligible)

	// 0.65 is below threshold but within margin: review, no auto-match.
	verdict = NewMatchVerdict(passResult(), 0.65, cfg)
	assert.True(t, verdict.ManualReviewRequired)
	assert.False(t, verdict.AutoMatchEligible)
}

func TestVerdictSoftKoBlocksAutoMatch(t *testing.T) {
	ko := NewKnockoutResult([]NamedDecision{
		{Name: "contract", Decision: KoDecision{Kind: SoftKo, Reason: "contract_unknown"}},
	})

	verdict := NewMatchVerdict(ko, 0.95, DefaultMatchConfig())
	assert.Equal(t, 0.95, verdict.Score)
	assert.True(t, verdict.ManualReviewRequired)
	assert.False(t, verdict.AutoMatchEligible)
}

func TestMatchConfigFromEnv(t *testing.T) {
	t.Setenv("AUTO_MATCH_THRESHOLD", "0.8")
	t.Setenv("MANUAL_REVIEW_MARGIN", "0.05")
	t.Setenv("MATCH_RULE_VERSION", "2026-07")

	cfg, err := MatchConfigFromEnv()
	assert.NoError(t, err)
	assert.Equal(t, 0.8, cfg.AutoMatchThreshold)
	assert.Equal(t, 0.05, cfg.ManualReviewMargin)
	assert.Equal(t, "2026-07", *cfg.RuleVersion)
}

func TestMatchConfigFromEnvRejectsOutOfRange(t *testing.T) {
	t.Setenv("AUTO_MATCH_THRESHOLD", "1.5")
	_, err := MatchConfigFromEnv()
	assert.Error(t, err)
}

func TestMatchConfigFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("MANUAL_REVIEW_MARGIN", "lots")
	_, err := MatchConfigFromEnv()
	assert.Error(t, err)
}
