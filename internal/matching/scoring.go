package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/normalize"
)

// Match status labels for one scored dimension.
const (
	StatusPerfectMatch = "PERFECT_MATCH"
	StatusMatch        = "MATCH"
	StatusPartialMatch = "PARTIAL_MATCH"
	StatusMiss         = "MISS"
	StatusUnknown      = "UNKNOWN"
)

// Weights is one scoring profile. The profile's entries sum to 1.
type Weights struct {
	Tanka      float64
	Location   float64
	Skills     float64
	Experience float64
	Contract   float64
	Other      float64
}

// Sum returns the total of all weight entries.
func (w Weights) Sum() float64 {
	return w.Tanka + w.Location + w.Skills + w.Experience + w.Contract + w.Other
}

// PrefilterWeights favors recall: skills dominate and the "other" bucket
// stays in play so manual-review-worthy candidates survive pruning.
var PrefilterWeights = Weights{
	Tanka: 0.25, Location: 0.15, Skills: 0.40, Experience: 0.10, Contract: 0.05, Other: 0.05,
}

// DetailedWeights favors precision for final ranking.
var DetailedWeights = Weights{
	Tanka: 0.25, Location: 0.15, Skills: 0.40, Experience: 0.15, Contract: 0.05, Other: 0.0,
}

// Config parameterizes the scoring engine.
type Config struct {
	Weights               Weights
	TankaProfitMinimum    float64
	TankaProfitOptimal    float64
	SkillMatchMinimum     float64
	ExperienceBufferYears float64
}

// DetailedConfig returns the ranking profile.
func DetailedConfig() Config {
	return Config{
		Weights:               DetailedWeights,
		TankaProfitMinimum:    5.0,
		TankaProfitOptimal:    0.25,
		SkillMatchMinimum:     SkillMatchThreshold(),
		ExperienceBufferYears: 0.5,
	}
}

// PrefilterConfig returns the pruning profile.
func PrefilterConfig() Config {
	cfg := DetailedConfig()
	cfg.Weights = PrefilterWeights
	return cfg
}

// ScoringResult is one dimension's verdict.
type ScoringResult struct {
	Score    float64
	MaxScore float64
	Status   string
	Details  string
}

// MatchScore is the weighted sum over all dimensions.
type MatchScore struct {
	Total      float64
	Tanka      ScoringResult
	Location   ScoringResult
	Skills     ScoringResult
	Experience ScoringResult
	Contract   ScoringResult
	Other      ScoringResult
}

// CalculatePrefilterScore scores a pair with the recall-oriented profile.
func CalculatePrefilterScore(project *domain.Project, talent *domain.Talent) MatchScore {
	return NewEngine(PrefilterConfig()).CalculateMatchScore(project, talent)
}

// CalculateDetailedScore scores a pair with the precision-oriented profile.
func CalculateDetailedScore(project *domain.Project, talent *domain.Talent) MatchScore {
	return NewEngine(DetailedConfig()).CalculateMatchScore(project, talent)
}

// Engine applies the business scoring rules under one config.
type Engine struct {
	config Config
}

// NewEngine builds an engine for the given config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// CalculateMatchScore scores every dimension and combines them.
func (e *Engine) CalculateMatchScore(project *domain.Project, talent *domain.Talent) MatchScore {
	tanka := e.scoreTanka(project, talent)
	location := e.scoreLocation(project, talent)
	skills := e.scoreSkills(project, talent)
	experience := e.scoreExperience(project, talent)
	contract := e.scoreContract(project, talent)
	other := e.scoreOtherFactors(project, talent)

	w := e.config.Weights
	total := tanka.Score*w.Tanka +
		location.Score*w.Location +
		skills.Score*w.Skills +
		experience.Score*w.Experience +
		contract.Score*w.Contract +
		other.Score*w.Other

	return MatchScore{
		Total:      total,
		Tanka:      tanka,
		Location:   location,
		Skills:     skills,
		Experience: experience,
		Contract:   contract,
		Other:      other,
	}
}

func neutral(details string) ScoringResult {
	return ScoringResult{Score: 0.5, MaxScore: 1.0, Status: StatusUnknown, Details: details}
}

func (e *Engine) scoreTanka(project *domain.Project, talent *domain.Talent) ScoringResult {
	if talent.DesiredPriceMin == nil {
		return neutral("人材希望単価が不明のため中立スコア")
	}
	if project.MonthlyTankaMax == nil {
		return neutral("案件上限単価が不明のため中立スコア")
	}

	projectTanka := float64(*project.MonthlyTankaMax)
	profit := projectTanka - float64(*talent.DesiredPriceMin)
	minProfit := e.config.TankaProfitMinimum
	optimalProfit := projectTanka * e.config.TankaProfitOptimal

	if profit < minProfit {
		return ScoringResult{
			Score: 0, MaxScore: 1.0, Status: StatusMiss,
			Details: fmt.Sprintf("利益不足: %.1f万 < %.1f万", profit, minProfit),
		}
	}

	switch {
	case profit >= optimalProfit:
		return ScoringResult{Score: 1.0, MaxScore: 1.0, Status: StatusPerfectMatch,
			Details: fmt.Sprintf("十分な利益: %.1f万 ≥ %.1f万", profit, optimalProfit)}
	case profit >= minProfit*3:
		return ScoringResult{Score: 0.9, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("良好な利益: %.1f万 ≥ %.1f万", profit, minProfit*3)}
	case profit >= minProfit*2:
		return ScoringResult{Score: 0.7, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("許容利益: %.1f万 ≥ %.1f万", profit, minProfit*2)}
	default:
		return ScoringResult{Score: 0.4, MaxScore: 1.0, Status: StatusPartialMatch,
			Details: fmt.Sprintf("最低限利益: %.1f万 ≥ %.1f万", profit, minProfit)}
	}
}

func (e *Engine) scoreLocation(project *domain.Project, talent *domain.Talent) ScoringResult {
	evaluation := EvaluateLocation(project, talent)
	unknown := evaluation.KoDecision.IsSoftKo() &&
		strings.Contains(evaluation.KoDecision.Reason, "location_unknown")

	return ScoringResult{
		Score:    evaluation.Score,
		MaxScore: 1.0,
		Status:   statusFromScore(evaluation.Score, unknown),
		Details:  evaluation.Details,
	}
}

func (e *Engine) scoreSkills(project *domain.Project, talent *domain.Talent) ScoringResult {
	required := CheckRequiredSkills(project.RequiredSkillsKeywords, talent.PossessedSkillsKeywords)

	if required.RequiresManualReview {
		return neutral("必須スキル要件が未設定のため中立スコア")
	}
	if required.IsKnockout {
		return ScoringResult{Score: 0, MaxScore: 1.0, Status: StatusMiss, Details: required.Reason}
	}

	preferred := CheckPreferredSkills(project.PreferredSkillsKeywords, talent.PossessedSkillsKeywords)
	score := required.MatchPercentage*0.75 + preferred.MatchPercentage*0.25

	matchFloor := e.config.SkillMatchMinimum
	if matchFloor < 0.6 {
		matchFloor = 0.6
	}
	var status string
	switch {
	case score >= 0.9:
		status = StatusPerfectMatch
	case score >= matchFloor:
		status = StatusMatch
	case score >= e.config.SkillMatchMinimum:
		status = StatusPartialMatch
	default:
		status = StatusMiss
	}

	return ScoringResult{
		Score:    score,
		MaxScore: 1.0,
		Status:   status,
		Details: fmt.Sprintf("必須:%.0f%% (%s) / 歓迎:%.0f%% (%s)",
			required.MatchPercentage*100, required.Reason,
			preferred.MatchPercentage*100, preferred.Reason),
	}
}

func (e *Engine) scoreExperience(project *domain.Project, talent *domain.Talent) ScoringResult {
	if project.MinExperienceYears == nil {
		return ScoringResult{Score: 1.0, MaxScore: 1.0, Status: StatusPerfectMatch,
			Details: "案件に経験年数要件なし"}
	}
	if talent.MinExperienceYears == nil {
		return neutral("人材の経験年数が不明のため中立スコア")
	}

	required := float64(*project.MinExperienceYears)
	actual := float64(*talent.MinExperienceYears)
	buffer := e.config.ExperienceBufferYears

	switch {
	case actual >= required+buffer*4:
		return ScoringResult{Score: 1.0, MaxScore: 1.0, Status: StatusPerfectMatch,
			Details: fmt.Sprintf("経験大幅超過: %.1f年 ≥ %.1f年", actual, required+buffer*4)}
	case actual >= required+buffer*2:
		return ScoringResult{Score: 0.9, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("経験十分: %.1f年 ≥ %.1f年", actual, required+buffer*2)}
	case actual >= required+buffer:
		return ScoringResult{Score: 0.8, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("経験超過: %.1f年 ≥ %.1f年", actual, required+buffer)}
	case actual >= required:
		return ScoringResult{Score: 0.7, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("要件達成: %.1f年 ≥ %.1f年", actual, required)}
	case actual+buffer >= required:
		return ScoringResult{Score: 0.4, MaxScore: 1.0, Status: StatusPartialMatch,
			Details: fmt.Sprintf("要件近接: %.1f年 ≈ %.1f年", actual, required)}
	default:
		return ScoringResult{Score: 0, MaxScore: 1.0, Status: StatusMiss,
			Details: fmt.Sprintf("経験不足: %.1f年 < %.1f年", actual, required)}
	}
}

func (e *Engine) scoreContract(project *domain.Project, talent *domain.Talent) ScoringResult {
	isKojinOK := project.IsKojinOK == nil || *project.IsKojinOK

	if project.ContractType == nil {
		return ScoringResult{Score: 1.0, MaxScore: 1.0, Status: StatusPerfectMatch,
			Details: "案件側に契約形態の制約なし"}
	}
	req := *project.ContractType

	primary := ""
	if talent.PrimaryContractType != nil {
		primary = *talent.PrimaryContractType
	}
	secondary := ""
	if talent.SecondaryContractType != nil {
		secondary = *talent.SecondaryContractType
	}

	switch {
	case primary != "" && req == primary:
		return ScoringResult{Score: 1.0, MaxScore: 1.0, Status: StatusPerfectMatch,
			Details: fmt.Sprintf("契約形態一致: %s", primary)}
	case primary != "" && secondary != "" && req == secondary:
		return ScoringResult{Score: 0.7, MaxScore: 1.0, Status: StatusPartialMatch,
			Details: fmt.Sprintf("副次契約形態で合致: primary=%s, secondary=%s", primary, secondary)}
	case primary != "" && isKojinOK && (primary == "直個人" || secondary == "直個人"):
		return ScoringResult{Score: 0.8, MaxScore: 1.0, Status: StatusMatch,
			Details: fmt.Sprintf("個人事業主許容のため直個人を許容: 要件=%s vs 人材=%s / %s", req, primary, secondary)}
	case primary == "":
		return neutral(fmt.Sprintf("契約形態不明: 要件=%s", req))
	default:
		return ScoringResult{Score: 0, MaxScore: 1.0, Status: StatusMiss,
			Details: fmt.Sprintf("契約形態不一致: 要件=%s vs 人材=%s", req, primary)}
	}
}

func (e *Engine) scoreOtherFactors(project *domain.Project, talent *domain.Talent) ScoringResult {
	var details []string
	score := 1.0
	status := StatusPerfectMatch

	if project.AgeLimitLower != nil || project.AgeLimitUpper != nil {
		if talent.BirthYear != nil {
			age := time.Now().UTC().Year() - *talent.BirthYear
			matched := true
			if project.AgeLimitLower != nil && age < *project.AgeLimitLower {
				score, status, matched = 0, StatusMiss, false
				details = append(details, fmt.Sprintf("年齢下限未達: %d < %d", age, *project.AgeLimitLower))
			}
			if project.AgeLimitUpper != nil && age > *project.AgeLimitUpper {
				score, status, matched = 0, StatusMiss, false
				details = append(details, fmt.Sprintf("年齢上限超過: %d > %d", age, *project.AgeLimitUpper))
			}
			if matched {
				details = append(details, "年齢要件クリア")
			}
		} else {
			if score > 0.5 {
				score = 0.5
			}
			status = StatusUnknown
			details = append(details, "年齢情報不足")
		}
	}

	if project.ForeignerAllowed != nil && !*project.ForeignerAllowed {
		switch {
		case talent.Nationality != nil && normalize.IsJapaneseNationality(*talent.Nationality):
			details = append(details, "国籍要件クリア")
		case talent.Nationality != nil:
			score, status = 0, StatusMiss
			details = append(details, fmt.Sprintf("外国籍不可: %s", *talent.Nationality))
		default:
			if score > 0.5 {
				score = 0.5
			}
			if status != StatusMiss {
				status = StatusUnknown
			}
			details = append(details, "国籍情報不足")
		}
	}

	if len(details) == 0 {
		details = append(details, "追加要素なし")
	}

	return ScoringResult{
		Score:    score,
		MaxScore: 1.0,
		Status:   status,
		Details:  strings.Join(details, " / "),
	}
}

func statusFromScore(score float64, unknown bool) string {
	switch {
	case unknown:
		return StatusUnknown
	case score >= 0.9:
		return StatusPerfectMatch
	case score >= 0.7:
		return StatusMatch
	case score >= 0.4:
		return StatusPartialMatch
	default:
		return StatusMiss
	}
}
