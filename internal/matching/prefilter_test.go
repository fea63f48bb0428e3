package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/domain"
)

func prefilterProject() domain.Project {
	return domain.Project{
		MonthlyTankaMax:        intp(120),
		WorkTodofuken:          strp("東京都"),
		WorkArea:               strp("関東"),
		RemoteOnsite:           strp("リモート併用"),
		RequiredSkillsKeywords: []string{"Rust", "AWS"},
		MinExperienceYears:     intp(3),
		ContractType:           strp("業務委託"),
	}
}

func prefilterTalent() domain.Talent {
	return domain.Talent{
		DesiredPriceMin:         intp(80),
		ResidentialTodofuken:    strp("東京都"),
		ResidentialArea:         strp("関東"),
		PossessedSkillsKeywords: []string{"rust", "aws"},
		MinExperienceYears:      intp(5),
		PrimaryContractType:     strp("業務委託"),
	}
}

func TestPreFilterDropsHardKoCandidates(t *testing.T) {
	filter := NewPreFilter(DefaultPreFilterConfig())
	talent := prefilterTalent()

	// Contract mismatch is a hard KO.
	project := prefilterProject()
	project.ContractType = strp("正社員")

	_, ok := filter.EvaluateCandidate(&talent, &project)
	assert.False(t, ok)

	results := filter.FilterCandidates(&talent, []domain.Project{project})
	assert.Empty(t, results)
}

func TestPreFilterSortsAndTruncates(t *testing.T) {
	low := prefilterProject()
	low.MonthlyTankaMax = intp(90)

	high := prefilterProject()
	high.MonthlyTankaMax = intp(150)

	filter := NewPreFilter(PreFilterConfig{MaxCandidates: 1, MinScore: 0.0})
	talent := prefilterTalent()

	results := filter.FilterCandidates(&talent, []domain.Project{low, high})
	require.Len(t, results, 1)
	assert.Equal(t, intp(150), results[0].Project.MonthlyTankaMax)
	assert.GreaterOrEqual(t, results[0].Score, 0.1)
}

func TestPreFilterKeepsSoftKoCandidates(t *testing.T) {
	filter := NewPreFilter(DefaultPreFilterConfig())
	talent := prefilterTalent()

	project := prefilterProject()
	project.RequiredSkillsKeywords = nil

	results := filter.FilterCandidates(&talent, []domain.Project{project})
	require.Len(t, results, 1)
	assert.True(t, results[0].Ko.NeedsManualReview)
	assert.Greater(t, results[0].Score, 0.1)
}

func TestPreFilterDropsLowScores(t *testing.T) {
	// The fixture pair scores 0.9925 (location 0.95 at weight 0.15 is the
	// only shortfall), which is at or below this minimum.
	filter := NewPreFilter(PreFilterConfig{MaxCandidates: 10, MinScore: 0.995})
	talent := prefilterTalent()
	project := prefilterProject()

	results := filter.FilterCandidates(&talent, []domain.Project{project})
	assert.Empty(t, results)
}
