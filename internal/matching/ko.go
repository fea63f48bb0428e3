// Package matching implements the deterministic matching core: per-check
// KO decisions, the single authoritative location evaluator, the weighted
// scorer with pre-filter and detailed profiles, and candidate pruning.
package matching

import (
	"fmt"
	"strings"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/normalize"
)

// KoKind distinguishes the three possible check outcomes.
type KoKind int

// KO outcome kinds.
const (
	// Pass means the check raised no objection.
	Pass KoKind = iota
	// SoftKo keeps the candidate but flags manual review.
	SoftKo
	// HardKo drops the candidate; scoring is skipped.
	HardKo
)

// KoDecision is one check's verdict. Reason is empty for Pass.
type KoDecision struct {
	Kind   KoKind
	Reason string
}

// IsHardKo reports a hard knockout.
func (d KoDecision) IsHardKo() bool { return d.Kind == HardKo }

// IsSoftKo reports a soft knockout (manual review required).
func (d KoDecision) IsSoftKo() bool { return d.Kind == SoftKo }

// NamedDecision pairs a check name with its decision.
type NamedDecision struct {
	Name     string
	Decision KoDecision
}

// KnockoutResult aggregates every check.
type KnockoutResult struct {
	IsHardKnockout    bool
	NeedsManualReview bool
	Decisions         []NamedDecision
}

// NewKnockoutResult derives the aggregate flags from the decision list.
func NewKnockoutResult(decisions []NamedDecision) KnockoutResult {
	result := KnockoutResult{Decisions: decisions}
	for _, d := range decisions {
		if d.Decision.IsHardKo() {
			result.IsHardKnockout = true
		}
		if d.Decision.IsSoftKo() {
			result.NeedsManualReview = true
		}
	}
	return result
}

// ManualReviewReasons joins SoftKo reasons with "; ", or returns "".
func (r KnockoutResult) ManualReviewReasons() string {
	var parts []string
	for _, d := range r.Decisions {
		if d.Decision.IsSoftKo() {
			parts = append(parts, fmt.Sprintf("%s: %s", d.Name, d.Decision.Reason))
		}
	}
	return strings.Join(parts, "; ")
}

// Reasons returns every non-Pass reason tagged with its check name, in
// check order.
func (r KnockoutResult) Reasons() []string {
	var out []string
	for _, d := range r.Decisions {
		if d.Decision.Kind != Pass {
			out = append(out, fmt.Sprintf("[%s] %s", d.Name, d.Decision.Reason))
		}
	}
	return out
}

// RunAllKoChecks evaluates every KO dimension for a project/talent pair.
// The check order is fixed so downstream reasons stay stable.
func RunAllKoChecks(project *domain.Project, talent *domain.Talent) KnockoutResult {
	decisions := []NamedDecision{
		{Name: "tanka", Decision: checkTankaKo(project, talent)},
		{Name: "required_skills", Decision: checkSkillKo(project.RequiredSkillsKeywords, talent.PossessedSkillsKeywords)},
		{Name: "location", Decision: EvaluateLocation(project, talent).KoDecision},
		{Name: "language", Decision: checkLanguageKo(project, talent)},
		{Name: "contract", Decision: checkContractTypeKo(project, talent)},
	}
	return NewKnockoutResult(decisions)
}

// checkTankaKo: profit below 5万 is a hard knockout; missing data on
// either side keeps the pair with a soft knockout.
func checkTankaKo(project *domain.Project, talent *domain.Talent) KoDecision {
	if project.MonthlyTankaMax == nil || talent.DesiredPriceMin == nil {
		return KoDecision{Kind: SoftKo, Reason: "tanka_unknown: 単価情報不足"}
	}

	profit := *project.MonthlyTankaMax - *talent.DesiredPriceMin
	if profit < 5 {
		return KoDecision{
			Kind: HardKo,
			Reason: fmt.Sprintf("tanka_ko: 利益 %d万 < 閾値5万 (案件上限%d万 - 人材下限%d万)",
				profit, *project.MonthlyTankaMax, *talent.DesiredPriceMin),
		}
	}
	return KoDecision{Kind: Pass}
}

func checkSkillKo(projectSkills, talentSkills []string) KoDecision {
	result := CheckRequiredSkills(projectSkills, talentSkills)

	if result.RequiresManualReview {
		return KoDecision{Kind: SoftKo, Reason: "required_skills_missing: 必須スキル要件が空"}
	}
	if result.IsKnockout {
		return KoDecision{Kind: HardKo, Reason: result.Reason}
	}
	return KoDecision{Kind: Pass}
}

func checkLanguageKo(project *domain.Project, talent *domain.Talent) KoDecision {
	ko, known := normalize.IsJapaneseKO(project.JapaneseSkill, talent.JapaneseSkill)
	if known && ko {
		return KoDecision{Kind: HardKo, Reason: "japanese_skill_insufficient: 日本語レベル不足"}
	}
	if !known {
		return KoDecision{Kind: SoftKo, Reason: "japanese_skill_unknown: 日本語スキル情報不足"}
	}

	if normalize.IsEnglishKO(project.EnglishSkill, talent.EnglishSkill) {
		return KoDecision{Kind: HardKo, Reason: "english_skill_insufficient: 英語レベル不足"}
	}
	return KoDecision{Kind: Pass}
}

func checkContractTypeKo(project *domain.Project, talent *domain.Talent) KoDecision {
	switch {
	case project.ContractType == nil:
		return KoDecision{Kind: Pass}
	case talent.PrimaryContractType == nil:
		return KoDecision{Kind: SoftKo, Reason: "contract_unknown: 人材契約形態が未設定"}
	case *project.ContractType == *talent.PrimaryContractType:
		return KoDecision{Kind: Pass}
	default:
		return KoDecision{
			Kind: HardKo,
			Reason: fmt.Sprintf("contract_mismatch: required=%s, talent=%s",
				*project.ContractType, *talent.PrimaryContractType),
		}
	}
}

// CheckFlowKo evaluates the contracting-chain depth against the project's
// limit. Unknown depth on either side is a soft knockout.
func CheckFlowKo(talentDepth, projectLimit *int) KoDecision {
	if talentDepth == nil || projectLimit == nil {
		return KoDecision{Kind: SoftKo, Reason: "flow_unknown: 商流情報不足"}
	}
	if *talentDepth > *projectLimit {
		return KoDecision{
			Kind:   HardKo,
			Reason: fmt.Sprintf("flow_exceeded: 人材depth=%d > 制限depth=%d", *talentDepth, *projectLimit),
		}
	}
	return KoDecision{Kind: Pass}
}
