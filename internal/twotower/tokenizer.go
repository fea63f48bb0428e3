package twotower

import (
	"strings"

	"github.com/sponto/ses-match/internal/domain"
)

// WeightedToken is one namespaced feature with its aggregation weight.
//
// Namespaces (shared between towers):
//
//	skill:<normalized>       required 2.0 / preferred・possessed 1.0
//	loc:<todofuken>          1.5
//	loc:area:<area>          1.0
//	loc:station:<station>    0.5
//	remote:<mode>            1.5
//	exp:<bucket>             1.0
//	contract:<type>          1.0
//	tanka:<bucket>           1.0
//	lang:ja:<level>          1.0
//	lang:en:<level>          1.0
type WeightedToken struct {
	Token  string
	Weight float32
}

// TokenizeProject produces the project tower's weighted tokens.
func TokenizeProject(project *domain.Project) []WeightedToken {
	var tokens []WeightedToken

	for _, skill := range project.RequiredSkillsKeywords {
		tokens = append(tokens, WeightedToken{"skill:" + strings.ToLower(skill), 2.0})
	}
	for _, skill := range project.PreferredSkillsKeywords {
		tokens = append(tokens, WeightedToken{"skill:" + strings.ToLower(skill), 1.0})
	}

	tokens = appendOpt(tokens, "loc:", project.WorkTodofuken, 1.5)
	tokens = appendOpt(tokens, "loc:area:", project.WorkArea, 1.0)
	tokens = appendOpt(tokens, "loc:station:", project.WorkStation, 0.5)
	tokens = appendOpt(tokens, "remote:", project.RemoteOnsite, 1.5)

	if project.MinExperienceYears != nil {
		tokens = append(tokens, WeightedToken{"exp:" + expYearsBucket(*project.MinExperienceYears), 1.0})
	}
	tokens = appendOpt(tokens, "contract:", project.ContractType, 1.0)
	if project.MonthlyTankaMax != nil {
		tokens = append(tokens, WeightedToken{"tanka:" + tankaBucket(*project.MonthlyTankaMax), 1.0})
	}
	tokens = appendOpt(tokens, "lang:ja:", project.JapaneseSkill, 1.0)
	tokens = appendOpt(tokens, "lang:en:", project.EnglishSkill, 1.0)

	return tokens
}

// TokenizeTalent produces the talent tower's weighted tokens.
func TokenizeTalent(talent *domain.Talent) []WeightedToken {
	var tokens []WeightedToken

	for _, skill := range talent.PossessedSkillsKeywords {
		tokens = append(tokens, WeightedToken{"skill:" + strings.ToLower(skill), 1.0})
	}

	tokens = appendOpt(tokens, "loc:", talent.ResidentialTodofuken, 1.5)
	tokens = appendOpt(tokens, "loc:area:", talent.ResidentialArea, 1.0)
	tokens = appendOpt(tokens, "loc:station:", talent.NearestStation, 0.5)
	tokens = appendOpt(tokens, "remote:", talent.DesiredRemoteOnsite, 1.5)

	if talent.MinExperienceYears != nil {
		tokens = append(tokens, WeightedToken{"exp:" + expYearsBucket(*talent.MinExperienceYears), 1.0})
	}
	tokens = appendOpt(tokens, "contract:", talent.PrimaryContractType, 1.0)
	if talent.DesiredPriceMin != nil {
		tokens = append(tokens, WeightedToken{"tanka:" + tankaBucket(*talent.DesiredPriceMin), 1.0})
	}
	tokens = appendOpt(tokens, "lang:ja:", talent.JapaneseSkill, 1.0)
	tokens = appendOpt(tokens, "lang:en:", talent.EnglishSkill, 1.0)

	return tokens
}

func appendOpt(tokens []WeightedToken, prefix string, value *string, weight float32) []WeightedToken {
	if value == nil || *value == "" {
		return tokens
	}
	return append(tokens, WeightedToken{prefix + *value, weight})
}

// expYearsBucket: 0-2, 3-5, 6-10, 11+.
func expYearsBucket(years int) string {
	switch {
	case years <= 2:
		return "0-2"
	case years <= 5:
		return "3-5"
	case years <= 10:
		return "6-10"
	default:
		return "11+"
	}
}

// tankaBucket buckets the monthly price in the caller's units.
func tankaBucket(tanka int) string {
	switch {
	case tanka < 30:
		return "under30"
	case tanka < 50:
		return "30-50"
	case tanka < 70:
		return "50-70"
	case tanka < 100:
		return "70-100"
	default:
		return "100+"
	}
}
