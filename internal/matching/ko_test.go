package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/domain"
)

func intp(v int) *int          { return &v }
func strp(v string) *string    { return &v }
func boolp(v bool) *bool       { return &v }
func i64p(v int64) *int64      { return &v }
func f64p(v float64) *float64  { return &v }

func baseProject() domain.Project {
	return domain.Project{
		MonthlyTankaMax:        intp(80),
		RequiredSkillsKeywords: []string{"rust"},
		WorkTodofuken:          strp("東京都"),
		WorkArea:               strp("関東"),
		RemoteOnsite:           strp("リモート併用"),
		JapaneseSkill:          strp("N2"),
		EnglishSkill:           strp("ビジネス"),
	}
}

func baseTalent() domain.Talent {
	return domain.Talent{
		DesiredPriceMin:         intp(70),
		PossessedSkillsKeywords: []string{"Rust"},
		ResidentialTodofuken:    strp("神奈川県"),
		ResidentialArea:         strp("関東"),
		JapaneseSkill:           strp("N1"),
		EnglishSkill:            strp("ネイティブ"),
	}
}

func TestRunAllKoChecksAggregates(t *testing.T) {
	project := baseProject()
	talent := baseTalent()

	result := RunAllKoChecks(&project, &talent)
	assert.False(t, result.IsHardKnockout)
	assert.False(t, result.NeedsManualReview)
	assert.Len(t, result.Decisions, 5)
}

func TestTankaProfitBelowThresholdIsHardKo(t *testing.T) {
	project := baseProject()
	project.MonthlyTankaMax = intp(60)
	project.JapaneseSkill = strp("N1")

	talent := baseTalent()
	talent.DesiredPriceMin = intp(58)
	talent.JapaneseSkill = strp("N2")
	talent.EnglishSkill = strp("会話")

	result := RunAllKoChecks(&project, &talent)
	assert.True(t, result.IsHardKnockout)

	hasTankaKo := false
	hasLanguageKo := false
	for _, d := range result.Decisions {
		if d.Decision.IsHardKo() {
			switch d.Name {
			case "tanka":
				hasTankaKo = true
			case "language":
				hasLanguageKo = true
			}
		}
	}
	assert.True(t, hasTankaKo)
	assert.True(t, hasLanguageKo)
}

func TestMissingTankaIsSoftKo(t *testing.T) {
	project := baseProject()
	project.MonthlyTankaMax = nil
	talent := baseTalent()

	result := RunAllKoChecks(&project, &talent)
	assert.False(t, result.IsHardKnockout)
	assert.True(t, result.NeedsManualReview)
	assert.Contains(t, result.ManualReviewReasons(), "tanka_unknown")
}

func TestUnknownTalentContractIsSoftKo(t *testing.T) {
	project := baseProject()
	project.ContractType = strp("業務委託")
	talent := baseTalent()

	result := RunAllKoChecks(&project, &talent)
	assert.True(t, result.NeedsManualReview)
	assert.Contains(t, result.ManualReviewReasons(), "contract_unknown")
}

func TestContractMismatchIsHardKo(t *testing.T) {
	project := baseProject()
	project.ContractType = strp("業務委託")
	talent := baseTalent()
	talent.PrimaryContractType = strp("正社員")

	result := RunAllKoChecks(&project, &talent)
	assert.True(t, result.IsHardKnockout)
}

func TestSkillKoVariants(t *testing.T) {
	// Empty requirement: soft KO.
	d := checkSkillKo(nil, []string{"rust"})
	assert.True(t, d.IsSoftKo())

	// Below threshold: hard KO.
	d = checkSkillKo([]string{"cobol", "fortran", "delphi", "vb"}, []string{"rust"})
	assert.True(t, d.IsHardKo())

	// Aliases count as matches.
	d = checkSkillKo([]string{"JavaScript", "Kubernetes"}, []string{"js", "k8s"})
	assert.Equal(t, Pass, d.Kind)
}

func TestCheckFlowKo(t *testing.T) {
	assert.True(t, CheckFlowKo(intp(2), intp(1)).IsHardKo())
	assert.Equal(t, Pass, CheckFlowKo(intp(1), intp(1)).Kind)
	assert.True(t, CheckFlowKo(nil, intp(1)).IsSoftKo())
	assert.True(t, CheckFlowKo(intp(1), nil).IsSoftKo())
}

// KO decisions are invariant under permutation of the input skill lists.
func TestKoChecksAreOrderInsensitive(t *testing.T) {
	project := baseProject()
	project.RequiredSkillsKeywords = []string{"Rust", "AWS", "Docker"}
	talent := baseTalent()
	talent.PossessedSkillsKeywords = []string{"docker", "aws", "rust"}

	forward := RunAllKoChecks(&project, &talent)

	project.RequiredSkillsKeywords = []string{"Docker", "AWS", "Rust"}
	talent.PossessedSkillsKeywords = []string{"rust", "docker", "aws"}
	backward := RunAllKoChecks(&project, &talent)

	require.Len(t, backward.Decisions, len(forward.Decisions))
	for i := range forward.Decisions {
		assert.Equal(t, forward.Decisions[i].Name, backward.Decisions[i].Name)
		assert.Equal(t, forward.Decisions[i].Decision.Kind, backward.Decisions[i].Decision.Kind)
	}
	assert.Equal(t, forward.IsHardKnockout, backward.IsHardKnockout)
	assert.Equal(t, forward.NeedsManualReview, backward.NeedsManualReview)
}
