package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/twotower"
)

func engineProject() domain.Project {
	return domain.Project{
		MonthlyTankaMax:         intp(120),
		WorkTodofuken:           strp("東京都"),
		WorkArea:                strp("関東"),
		RemoteOnsite:            strp("リモート併用"),
		RequiredSkillsKeywords:  []string{"Rust"},
		PreferredSkillsKeywords: []string{"GraphQL"},
		MinExperienceYears:      intp(3),
		ContractType:            strp("業務委託"),
	}
}

func engineTalent() domain.Talent {
	return domain.Talent{
		DesiredPriceMin:         intp(80),
		ResidentialTodofuken:    strp("東京都"),
		ResidentialArea:         strp("関東"),
		PossessedSkillsKeywords: []string{"rust", "graphql"},
		MinExperienceYears:      intp(5),
		PrimaryContractType:     strp("業務委託"),
	}
}

func TestRankProjectsByDetailedScore(t *testing.T) {
	engine := DefaultMatchingEngine()
	talent := engineTalent()

	weaker := engineProject()
	weaker.MonthlyTankaMax = intp(90)
	weaker.PreferredSkillsKeywords = nil

	stronger := engineProject()

	results := engine.RankProjects(&talent, []domain.Project{weaker, stronger})
	require.Len(t, results, 2)
	assert.Equal(t, intp(120), results[0].Project.MonthlyTankaMax)
	assert.GreaterOrEqual(t, results[0].DetailedScore.Total, results[1].DetailedScore.Total)
}

func TestRankProjectsFiltersHardKo(t *testing.T) {
	engine := DefaultMatchingEngine()
	talent := engineTalent()

	hardKo := engineProject()
	hardKo.RequiredSkillsKeywords = []string{"Go"}

	results := engine.RankProjects(&talent, []domain.Project{engineProject(), hardKo})
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Rust"}, results[0].Project.RequiredSkillsKeywords)
}

func TestRankTalentsWithTwoTowerMetadata(t *testing.T) {
	engine := DefaultMatchingEngine()
	project := engineProject()
	project.ID = i64p(10)

	strong := engineTalent()
	strong.ID = i64p(1)

	weaker := engineTalent()
	weaker.ID = i64p(2)
	weaker.PossessedSkillsKeywords = []string{"rust"}

	config := twotower.Config{Dimension: 256, Weight: 0.2, Enabled: true, ScoreMin: 0, ScoreMax: 1}
	embedder := twotower.NewEmbedder("hash", config)

	ranked := engine.RankTalentsForProject(&project, []domain.Talent{strong, weaker}, embedder, config)
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		require.NotNil(t, r.TwoTowerScore)
		require.NotNil(t, r.TwoTowerEmbedder)
		assert.Equal(t, "hash", *r.TwoTowerEmbedder)
		assert.Equal(t, "v2", *r.TwoTowerVersion)
	}
	assert.GreaterOrEqual(t, ranked[0].TotalScore, ranked[1].TotalScore)
}

func TestRankTalentsWithoutEmbedderUsesBusinessScore(t *testing.T) {
	engine := DefaultMatchingEngine()
	project := engineProject()
	project.ID = i64p(20)

	talent := engineTalent()
	talent.ID = i64p(30)

	ranked := engine.RankTalentsForProject(&project, []domain.Talent{talent}, nil, twotower.DefaultConfig())
	require.Len(t, ranked, 1)
	assert.Nil(t, ranked[0].TwoTowerScore)
	assert.Equal(t, ranked[0].DetailedScore.Total, ranked[0].TotalScore)
}

func TestCombineTotalScore(t *testing.T) {
	disabled := twotower.DefaultConfig()
	assert.Equal(t, 0.8, CombineTotalScore(0.8, f64p(0.4), disabled))

	enabled := twotower.Config{Dimension: 256, Weight: 0.25, Enabled: true, ScoreMin: 0, ScoreMax: 1}
	assert.InDelta(t, 0.8*0.75+0.4*0.25, CombineTotalScore(0.8, f64p(0.4), enabled), 1e-9)

	// No score for the pair: business only.
	assert.Equal(t, 0.8, CombineTotalScore(0.8, nil, enabled))
}

func TestEvaluateKoMatchesDirectCall(t *testing.T) {
	engine := DefaultMatchingEngine()
	project := engineProject()
	talent := engineTalent()

	viaEngine := engine.EvaluateKo(&project, &talent)
	direct := RunAllKoChecks(&project, &talent)
	assert.Equal(t, direct.IsHardKnockout, viaEngine.IsHardKnockout)
	assert.Equal(t, direct.NeedsManualReview, viaEngine.NeedsManualReview)
}
