package matching

import (
	"sort"

	"github.com/sponto/ses-match/internal/domain"
)

// PreFilterConfig bounds the candidate pruning stage.
type PreFilterConfig struct {
	// MaxCandidates truncates the survivor list (score descending).
	MaxCandidates int
	// MinScore drops candidates scoring at or below this value.
	MinScore float64
}

// DefaultPreFilterConfig returns the production pruning bounds.
func DefaultPreFilterConfig() PreFilterConfig {
	return PreFilterConfig{MaxCandidates: 500, MinScore: 0.1}
}

// PrefilterCandidate is a surviving project with its pruning artifacts.
type PrefilterCandidate struct {
	Project    domain.Project
	Score      float64
	Ko         KnockoutResult
	MatchScore MatchScore
}

// PreFilter prunes candidates with KO checks plus the recall-oriented
// score profile. HardKo drops; SoftKo survives with the review flag.
type PreFilter struct {
	config PreFilterConfig
}

// NewPreFilter builds a pre-filter with the given bounds.
func NewPreFilter(config PreFilterConfig) *PreFilter {
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = DefaultPreFilterConfig().MaxCandidates
	}
	return &PreFilter{config: config}
}

// EvaluateCandidate runs KO checks and the pre-filter score for one pair.
// The second return is false when the candidate is dropped.
func (f *PreFilter) EvaluateCandidate(talent *domain.Talent, project *domain.Project) (PrefilterCandidate, bool) {
	ko := RunAllKoChecks(project, talent)
	if ko.IsHardKnockout {
		return PrefilterCandidate{}, false
	}

	matchScore := CalculatePrefilterScore(project, talent)
	if matchScore.Total <= f.config.MinScore {
		return PrefilterCandidate{}, false
	}

	return PrefilterCandidate{
		Project:    *project,
		Score:      matchScore.Total,
		Ko:         ko,
		MatchScore: matchScore,
	}, true
}

// FilterCandidates returns all survivors sorted by score descending,
// truncated to MaxCandidates.
func (f *PreFilter) FilterCandidates(talent *domain.Talent, projects []domain.Project) []PrefilterCandidate {
	candidates := make([]PrefilterCandidate, 0, len(projects))
	for i := range projects {
		if candidate, ok := f.EvaluateCandidate(talent, &projects[i]); ok {
			candidates = append(candidates, candidate)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > f.config.MaxCandidates {
		candidates = candidates[:f.config.MaxCandidates]
	}
	return candidates
}
