// Package matchrun orchestrates one matching run: rank candidates, build
// match_results snapshots and interaction_logs rows under a single
// match_run_id, and persist them through the idempotent store adapters.
package matchrun

import (
	"context"
	"fmt"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/matching"
	"github.com/sponto/ses-match/internal/runid"
	"github.com/sponto/ses-match/internal/twotower"
)

// MatchResultStore persists snapshot rows.
type MatchResultStore interface {
	InsertMatchResult(ctx context.Context, insert *domain.MatchResultInsert) (int64, error)
}

// InteractionLogStore persists per-run interaction rows.
type InteractionLogStore interface {
	InsertInteractionLog(ctx context.Context, insert *domain.InteractionLogInsert) (int64, error)
}

// ScoreVersion tags the score_breakdown layout.
const ScoreVersion = "v2"

// Runner drives one matching run.
type Runner struct {
	engine         *matching.MatchingEngine
	twoTowerConfig twotower.Config
	embedder       twotower.Embedder
	engineVersion  *string
	configVersion  *string
	variant        *string
	matchRunID     string
}

// NewRunnerFromEnv wires the engine and the two-tower feature from the
// environment; the run ID defaults to the process-level ULID.
func NewRunnerFromEnv() *Runner {
	config, embedder := twotower.InitFromEnv()
	return &Runner{
		engine:         matching.DefaultMatchingEngine(),
		twoTowerConfig: config,
		embedder:       embedder,
		matchRunID:     runid.Get(),
	}
}

// WithEngineVersion sets the engine version recorded on every row.
func (r *Runner) WithEngineVersion(v string) *Runner { r.engineVersion = &v; return r }

// WithConfigVersion sets the rule/config version recorded on every row.
func (r *Runner) WithConfigVersion(v string) *Runner { r.configVersion = &v; return r }

// WithVariant sets the A/B bucket recorded on interaction logs.
func (r *Runner) WithVariant(v string) *Runner { r.variant = &v; return r }

// WithMatchRunID overrides the run ID (normally left alone).
func (r *Runner) WithMatchRunID(v string) *Runner { r.matchRunID = v; return r }

// MatchRunID returns the run ID shared by every row of this run.
func (r *Runner) MatchRunID() string { return r.matchRunID }

// RankTalents returns the ranked candidates without persisting anything.
func (r *Runner) RankTalents(project *domain.Project, talents []domain.Talent) []matching.RankedTalentMatch {
	return r.engine.RankTalentsForProject(project, talents, r.embedder, r.twoTowerConfig)
}

// buildScoreBreakdown assembles the score_breakdown JSON object.
func buildScoreBreakdown(score matching.MatchScore, totalScore float64, twoTowerScore *float64) map[string]any {
	breakdown := map[string]any{
		"tanka":          score.Tanka.Score,
		"location":       score.Location.Score,
		"skills":         score.Skills.Score,
		"experience":     score.Experience.Score,
		"contract":       score.Contract.Score,
		"other":          score.Other.Score,
		"business_total": score.Total,
		"total":          totalScore,
		"score_version":  ScoreVersion,
	}
	if twoTowerScore != nil {
		breakdown["two_tower_score"] = *twoTowerScore
	}
	return breakdown
}

// BuildMatchResultInserts builds snapshot rows for every ranked pair that
// carries both ids. Returns (talent_id, insert) pairs in rank order.
func (r *Runner) BuildMatchResultInserts(project *domain.Project, talents []domain.Talent) []TalentInsert {
	ranked := r.RankTalents(project, talents)

	out := make([]TalentInsert, 0, len(ranked))
	for _, match := range ranked {
		if match.Talent.ID == nil || match.Project.ID == nil {
			continue
		}

		total := match.TotalScore
		runID := r.matchRunID
		out = append(out, TalentInsert{
			TalentID: *match.Talent.ID,
			Insert: domain.MatchResultInsert{
				TalentID:          *match.Talent.ID,
				ProjectID:         *match.Project.ID,
				IsKnockout:        match.Ko.IsHardKnockout,
				KoReasons:         match.Ko.Reasons(),
				NeedsManualReview: match.Ko.NeedsManualReview,
				ScoreTotal:        &total,
				ScoreBreakdown:    buildScoreBreakdown(match.DetailedScore, match.TotalScore, match.TwoTowerScore),
				EngineVersion:     r.engineVersion,
				RuleVersion:       r.configVersion,
				MatchRunID:        &runID,
			},
		})
	}
	return out
}

// TalentInsert pairs a talent id with its snapshot insert.
type TalentInsert struct {
	TalentID int64
	Insert   domain.MatchResultInsert
}

// BuildInteractionLogs builds one log row per ranked pair. When snapshot
// ids are already known, matchResultIDs backfills match_result_id.
func (r *Runner) BuildInteractionLogs(
	project *domain.Project,
	talents []domain.Talent,
	matchResultIDs map[int64]int64,
) []domain.InteractionLogInsert {
	ranked := r.RankTalents(project, talents)

	out := make([]domain.InteractionLogInsert, 0, len(ranked))
	for _, match := range ranked {
		if match.Talent.ID == nil || match.Project.ID == nil {
			continue
		}

		var matchResultID *int64
		if matchResultIDs != nil {
			if id, ok := matchResultIDs[*match.Talent.ID]; ok {
				matchResultID = &id
			}
		}

		business := match.DetailedScore.Total
		out = append(out, domain.InteractionLogInsert{
			MatchResultID:    matchResultID,
			TalentID:         *match.Talent.ID,
			ProjectID:        *match.Project.ID,
			MatchRunID:       r.matchRunID,
			EngineVersion:    r.engineVersion,
			ConfigVersion:    r.configVersion,
			TwoTowerScore:    match.TwoTowerScore,
			TwoTowerEmbedder: match.TwoTowerEmbedder,
			TwoTowerVersion:  match.TwoTowerVersion,
			BusinessScore:    &business,
			Variant:          r.variant,
		})
	}
	return out
}

// Persist ranks once and writes snapshots then interaction logs, wiring
// each log row to the snapshot id returned by the upsert. Both writes are
// idempotent, so a retried run converges to the same rows.
func (r *Runner) Persist(
	ctx context.Context,
	results MatchResultStore,
	logs InteractionLogStore,
	project *domain.Project,
	talents []domain.Talent,
) error {
	inserts := r.BuildMatchResultInserts(project, talents)

	matchResultIDs := make(map[int64]int64, len(inserts))
	for i := range inserts {
		id, err := results.InsertMatchResult(ctx, &inserts[i].Insert)
		if err != nil {
			return fmt.Errorf("op=matchrun.persist_snapshot: %w", err)
		}
		matchResultIDs[inserts[i].TalentID] = id
	}

	for _, log := range r.BuildInteractionLogs(project, talents, matchResultIDs) {
		if _, err := logs.InsertInteractionLog(ctx, &log); err != nil {
			return fmt.Errorf("op=matchrun.persist_interaction: %w", err)
		}
	}
	return nil
}
