package matching

import (
	"sort"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/twotower"
)

// RankedMatch is one surviving project with both score profiles.
type RankedMatch struct {
	Project        domain.Project
	Ko             KnockoutResult
	PrefilterScore MatchScore
	DetailedScore  MatchScore
}

// RankedTalentMatch is one surviving talent for a project, with the
// combined total and two-tower metadata when active.
type RankedTalentMatch struct {
	Talent           domain.Talent
	Project          domain.Project
	Ko               KnockoutResult
	PrefilterScore   MatchScore
	DetailedScore    MatchScore
	TotalScore       float64
	TwoTowerScore    *float64
	TwoTowerEmbedder *string
	TwoTowerVersion  *string
}

// MatchingEngine composes the pre-filter and the detailed scorer.
type MatchingEngine struct {
	prefilter *PreFilter
}

// NewMatchingEngine builds an engine with the given pruning bounds.
func NewMatchingEngine(config PreFilterConfig) *MatchingEngine {
	return &MatchingEngine{prefilter: NewPreFilter(config)}
}

// DefaultMatchingEngine uses the production pruning bounds.
func DefaultMatchingEngine() *MatchingEngine {
	return NewMatchingEngine(DefaultPreFilterConfig())
}

// EvaluateKo runs only the KO checks for one pair.
func (e *MatchingEngine) EvaluateKo(project *domain.Project, talent *domain.Talent) KnockoutResult {
	return RunAllKoChecks(project, talent)
}

// RankProjects prunes with the pre-filter, re-scores survivors with the
// detailed profile, and sorts by detailed total descending.
func (e *MatchingEngine) RankProjects(talent *domain.Talent, projects []domain.Project) []RankedMatch {
	candidates := e.prefilter.FilterCandidates(talent, projects)

	ranked := make([]RankedMatch, 0, len(candidates))
	for _, candidate := range candidates {
		detailed := CalculateDetailedScore(&candidate.Project, talent)
		ranked = append(ranked, RankedMatch{
			Project:        candidate.Project,
			Ko:             candidate.Ko,
			PrefilterScore: candidate.MatchScore,
			DetailedScore:  detailed,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DetailedScore.Total > ranked[j].DetailedScore.Total
	})
	return ranked
}

// CombineTotalScore blends the business score with the normalized
// two-tower score. With the feature disabled, no embedder active, or no
// score for the pair, the business score stands alone.
func CombineTotalScore(businessScore float64, twoTowerScore *float64, config twotower.Config) float64 {
	if !config.Enabled || twoTowerScore == nil || config.Weight <= 0 {
		return businessScore
	}
	w := config.Weight
	if w > 1 {
		w = 1
	}
	return businessScore*(1-w) + *twoTowerScore*w
}

// RankTalentsForProject ranks a project's candidate talents by the
// combined total score, attaching two-tower similarity when an embedder
// is active.
func (e *MatchingEngine) RankTalentsForProject(
	project *domain.Project,
	talents []domain.Talent,
	embedder twotower.Embedder,
	config twotower.Config,
) []RankedTalentMatch {
	twoTowerScores := map[int64]float64{}
	var embedderName, embedderVersion *string

	if embedder != nil {
		name := embedder.Name()
		version := embedder.Version()
		embedderName, embedderVersion = &name, &version
		for _, s := range twotower.RankTalents(embedder, project, talents) {
			twoTowerScores[s.TalentID] = s.Score
		}
	}

	ranked := make([]RankedTalentMatch, 0, len(talents))
	for i := range talents {
		talent := &talents[i]
		candidate, ok := e.prefilter.EvaluateCandidate(talent, project)
		if !ok {
			continue
		}

		detailed := CalculateDetailedScore(project, talent)

		var normalized *float64
		if embedder != nil && talent.ID != nil {
			if raw, found := twoTowerScores[*talent.ID]; found {
				v := config.NormalizeScore(raw)
				normalized = &v
			}
		}

		ranked = append(ranked, RankedTalentMatch{
			Talent:           *talent,
			Project:          candidate.Project,
			Ko:               candidate.Ko,
			PrefilterScore:   candidate.MatchScore,
			DetailedScore:    detailed,
			TotalScore:       CombineTotalScore(detailed.Total, normalized, config),
			TwoTowerScore:    normalized,
			TwoTowerEmbedder: embedderName,
			TwoTowerVersion:  embedderVersion,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	return ranked
}
