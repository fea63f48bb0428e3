package matching

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sponto/ses-match/internal/normalize"
)

// DefaultSkillMatchThreshold is the knockout cutoff for the required-skill
// match ratio when SR_SKILL_MATCH_THRESHOLD is not set.
const DefaultSkillMatchThreshold = 0.3

// SkillMatchThreshold reads SR_SKILL_MATCH_THRESHOLD, falling back to the
// default on absence or parse failure.
func SkillMatchThreshold() float64 {
	if raw := os.Getenv("SR_SKILL_MATCH_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return DefaultSkillMatchThreshold
}

// SkillMatchResult reports the required-skill comparison.
type SkillMatchResult struct {
	IsKnockout           bool
	MatchPercentage      float64
	MatchedSkills        []string
	Reason               string
	RequiresManualReview bool
}

// CheckRequiredSkills compares normalized required skills against the
// talent's normalized possessed skills. An empty requirement passes with
// the manual-review flag set.
func CheckRequiredSkills(projectSkills, talentSkills []string) SkillMatchResult {
	return checkRequiredSkillsWithThreshold(projectSkills, talentSkills, SkillMatchThreshold())
}

func checkRequiredSkillsWithThreshold(projectSkills, talentSkills []string, threshold float64) SkillMatchResult {
	required := normalize.NormalizeSkillSet(projectSkills)

	if len(required) == 0 {
		return SkillMatchResult{
			MatchPercentage:      1.0,
			Reason:               "必須スキル要件なし",
			RequiresManualReview: true,
		}
	}

	possessed := normalize.NormalizeSkillSet(talentSkills)
	var matched []string
	for skill := range required {
		if _, ok := possessed[skill]; ok {
			matched = append(matched, skill)
		}
	}
	ratio := float64(len(matched)) / float64(len(required))
	isKnockout := ratio < threshold

	reason := fmt.Sprintf("必須スキル%d件中%d件(%.0f%%)に合致", len(required), len(matched), ratio*100)
	if isKnockout {
		reason = fmt.Sprintf("必須スキルとのマッチ率が%.0f%%であり、基準の%.0f%%に達していません",
			ratio*100, threshold*100)
	}

	return SkillMatchResult{
		IsKnockout:      isKnockout,
		MatchPercentage: ratio,
		MatchedSkills:   matched,
		Reason:          reason,
	}
}

// CheckPreferredSkills measures the preferred-skill overlap ratio; it
// never knocks out. An empty preferred list counts as a full match.
func CheckPreferredSkills(projectSkills, talentSkills []string) SkillMatchResult {
	preferred := normalize.NormalizeSkillSet(projectSkills)
	if len(preferred) == 0 {
		return SkillMatchResult{MatchPercentage: 1.0, Reason: "歓迎スキル指定なし"}
	}

	possessed := normalize.NormalizeSkillSet(talentSkills)
	var matched []string
	for skill := range preferred {
		if _, ok := possessed[skill]; ok {
			matched = append(matched, skill)
		}
	}
	ratio := float64(len(matched)) / float64(len(preferred))

	return SkillMatchResult{
		MatchPercentage: ratio,
		MatchedSkills:   matched,
		Reason:          fmt.Sprintf("歓迎スキル%d件中%d件に合致", len(preferred), len(matched)),
	}
}
