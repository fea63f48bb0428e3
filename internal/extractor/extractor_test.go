package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/queue"
)

func TestExtractTankaRangeMinMaxSingle(t *testing.T) {
	lo, hi, ok := ExtractTanka("月額70〜90万円の案件です")
	require.True(t, ok)
	assert.Equal(t, 70, lo)
	assert.Equal(t, 90, hi)

	lo, hi, ok = ExtractTanka("70万円〜で検討")
	require.True(t, ok)
	assert.Equal(t, 70, lo)
	assert.Equal(t, 90, hi)

	lo, hi, ok = ExtractTanka("〜90万円まで")
	require.True(t, ok)
	assert.Equal(t, 70, lo)
	assert.Equal(t, 90, hi)

	lo, hi, ok = ExtractTanka("80万円程度")
	require.True(t, ok)
	assert.Equal(t, 80, lo)
	assert.Equal(t, 80, hi)

	_, _, ok = ExtractTanka("25万円")
	assert.False(t, ok)
}

func TestExtractTankaBoundaries(t *testing.T) {
	// Min-only max is capped at 200.
	lo, hi, ok := ExtractTanka("190万円以上")
	require.True(t, ok)
	assert.Equal(t, 190, lo)
	assert.Equal(t, 200, hi)

	// Max-only min is floored at 30.
	lo, hi, ok = ExtractTanka("〜40万円")
	require.True(t, ok)
	assert.Equal(t, 30, lo)
	assert.Equal(t, 40, hi)

	_, _, ok = ExtractTanka("250万円")
	assert.False(t, ok)
}

func TestExtractStartDateRawPatterns(t *testing.T) {
	assert.Equal(t, "即日", ExtractStartDateRaw("即日で参画可能です"))
	assert.Equal(t, "来月", ExtractStartDateRaw("来月開始想定"))
	assert.Equal(t, "1月上旬", ExtractStartDateRaw("1月上旬スタート"))
	assert.Equal(t, "2026/02/15", ExtractStartDateRaw("開始日は2026/02/15を予定"))
	assert.Equal(t, "12月", ExtractStartDateRaw("12月開始を希望しています"))
	assert.Equal(t, "", ExtractStartDateRaw("未定です"))
}

func TestExtractStartDateRawRejectsInvalidCalendarDates(t *testing.T) {
	assert.Equal(t, "", ExtractStartDateRaw("2026/02/30"))
	assert.Equal(t, "", ExtractStartDateRaw("2026-13-01"))
	assert.Equal(t, "来月上旬", ExtractStartDateRaw("来月上旬に開始希望"))
	assert.Equal(t, "12月下旬", ExtractStartDateRaw("12月下旬スタートを想定しています"))
}

func TestExtractWorkTodofukenPicksLongestMention(t *testing.T) {
	assert.Equal(t, "東京都", ExtractWorkTodofuken("勤務地は東京都内です"))
	assert.Equal(t, "神奈川県", ExtractWorkTodofuken("神奈川県横浜市"))
	assert.Equal(t, "", ExtractWorkTodofuken("リモートのみ"))
}

func TestExtractRemoteOnsiteAndFlow(t *testing.T) {
	assert.Equal(t, "フルリモート", ExtractRemoteOnsite("完全在宅OK"))
	assert.Equal(t, "リモート併用", ExtractRemoteOnsite("週2リモート可"))
	assert.Equal(t, "フル出社", ExtractRemoteOnsite("客先常駐となります"))

	assert.Equal(t, "エンド直", ExtractFlowDept("エンド直案件"))
	assert.Equal(t, "1次請け", ExtractFlowDept("元請からの依頼"))
	assert.Equal(t, "", ExtractFlowDept("商流の記載なし"))
}

func TestExtractAllSpecScenario(t *testing.T) {
	subject := "【案件】Rust開発"
	out := ExtractAll("月額70〜90万円、即日参画", &subject, []string{"Rust", "AWS"})

	require.NotNil(t, out.Partial.MonthlyTankaMin)
	require.NotNil(t, out.Partial.MonthlyTankaMax)
	assert.Equal(t, 70, *out.Partial.MonthlyTankaMin)
	assert.Equal(t, 90, *out.Partial.MonthlyTankaMax)
	require.NotNil(t, out.Partial.StartDateRaw)
	assert.Equal(t, "即日", *out.Partial.StartDateRaw)
	assert.Equal(t, []string{"aws", "rust"}, out.Partial.RequiredSkillsKeywords)
	require.NotNil(t, out.Partial.ProjectName)
	assert.Equal(t, subject, *out.Partial.ProjectName)
}

func TestQualityAndRecommendationFollowTierRules(t *testing.T) {
	// Tier1 complete, Tier2 empty: LLM recommended.
	out := ExtractAll("70〜90万円 即日 東京都", nil, nil)
	assert.Equal(t, 4, out.Quality.Tier1Extracted)
	assert.Equal(t, 0, out.Quality.Tier2Extracted)
	assert.Equal(t, queue.LLMRecommended, out.Decision.RecommendedMethod)
	assert.True(t, out.Quality.LLMRecommended)

	// Tier1 and Tier2 complete: Rust recommended.
	out = ExtractAll("70〜90万円 即日 東京都 フルリモート エンド直", nil, nil)
	assert.Equal(t, 4, out.Quality.Tier1Extracted)
	assert.Equal(t, 2, out.Quality.Tier2Extracted)
	assert.Equal(t, queue.RustRecommended, out.Decision.RecommendedMethod)

	// Tier1 incomplete: LLM recommended regardless of Tier2.
	out = ExtractAll("フルリモート エンド直", nil, nil)
	assert.Less(t, out.Quality.Tier1Extracted, 4)
	assert.Equal(t, queue.LLMRecommended, out.Decision.RecommendedMethod)
}

func TestCalculatePriorityBands(t *testing.T) {
	assert.Equal(t, 100, CalculatePriority(Quality{Tier1Extracted: 3, Tier1Total: 4}))
	assert.Equal(t, 50, CalculatePriority(Quality{Tier1Extracted: 4, Tier1Total: 4, Tier2Extracted: 0, Tier2Total: 2}))
	assert.Equal(t, 20, CalculatePriority(Quality{Tier1Extracted: 4, Tier1Total: 4, Tier2Extracted: 1, Tier2Total: 2}))
	assert.Equal(t, 10, CalculatePriority(Quality{Tier1Extracted: 4, Tier1Total: 4, Tier2Extracted: 2, Tier2Total: 2}))
}
