package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sponto/ses-match/internal/domain"
)

// MatchResultRepo persists match snapshot rows.
type MatchResultRepo struct{ Pool PgxPool }

// NewMatchResultRepo constructs a MatchResultRepo with the given pool.
func NewMatchResultRepo(p PgxPool) *MatchResultRepo { return &MatchResultRepo{Pool: p} }

// InsertMatchResult upserts one snapshot row and returns its id.
//
// run_date is a generated column ((created_at AT TIME ZONE canonical)::date),
// so a retry within the same calendar day and run hits the
// (talent_id, project_id, run_date, last_match_run_id) unique index and
// updates in place. The unique index only covers rows with deleted_at IS
// NULL, so a write for the key of a soft-deleted row inserts a fresh row.
func (r *MatchResultRepo) InsertMatchResult(ctx domain.Context, result *domain.MatchResultInsert) (int64, error) {
	tracer := otel.Tracer("repo.match_results")
	ctx, span := tracer.Start(ctx, "match_results.Insert")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "ses.match_results"),
	)

	var koReasons []byte
	if len(result.KoReasons) > 0 {
		var err error
		koReasons, err = json.Marshal(result.KoReasons)
		if err != nil {
			return 0, fmt.Errorf("op=match_results.marshal_ko: %w", err)
		}
	}

	var breakdown []byte
	if result.ScoreBreakdown != nil {
		var err error
		breakdown, err = json.Marshal(result.ScoreBreakdown)
		if err != nil {
			return 0, fmt.Errorf("op=match_results.marshal_breakdown: %w", err)
		}
	}

	createdAt := time.Now().UTC()
	if result.CreatedAt != nil {
		createdAt = *result.CreatedAt
	}

	q := `INSERT INTO ses.match_results (
        talent_id, project_id, is_knockout, ko_reasons, needs_manual_review,
        score_total, score_breakdown, engine_version, rule_version,
        last_match_run_id, created_at, updated_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
    )
    ON CONFLICT (talent_id, project_id, run_date, last_match_run_id) WHERE deleted_at IS NULL
    DO UPDATE SET
        is_knockout = EXCLUDED.is_knockout,
        ko_reasons = EXCLUDED.ko_reasons,
        needs_manual_review = EXCLUDED.needs_manual_review,
        score_total = EXCLUDED.score_total,
        score_breakdown = EXCLUDED.score_breakdown,
        engine_version = EXCLUDED.engine_version,
        rule_version = EXCLUDED.rule_version,
        last_match_run_id = EXCLUDED.last_match_run_id,
        updated_at = EXCLUDED.updated_at,
        is_deleted = false,
        deleted_at = NULL,
        deleted_by = NULL
    RETURNING id`

	var id int64
	err := r.Pool.QueryRow(ctx, q,
		result.TalentID, result.ProjectID, result.IsKnockout, koReasons,
		result.NeedsManualReview, result.ScoreTotal, breakdown,
		result.EngineVersion, result.RuleVersion, result.MatchRunID, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("op=match_results.insert: %w", err)
	}
	return id, nil
}

// SoftDelete marks a snapshot deleted without removing the row.
func (r *MatchResultRepo) SoftDelete(ctx domain.Context, id int64, deletedBy string) error {
	_, err := r.Pool.Exec(ctx, `UPDATE ses.match_results SET
        is_deleted = true, deleted_at = NOW(), deleted_by = $2, updated_at = NOW()
    WHERE id = $1 AND deleted_at IS NULL`, id, deletedBy)
	if err != nil {
		return fmt.Errorf("op=match_results.soft_delete: %w", err)
	}
	return nil
}

// GetByID loads one active snapshot row.
func (r *MatchResultRepo) GetByID(ctx domain.Context, id int64) (*MatchResultRow, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, talent_id, project_id, is_knockout,
        ko_reasons, needs_manual_review, score_total, score_breakdown,
        engine_version, rule_version, created_at
    FROM ses.match_results WHERE id = $1 AND deleted_at IS NULL`, id)

	var m MatchResultRow
	err := row.Scan(&m.ID, &m.TalentID, &m.ProjectID, &m.IsKnockout, &m.KoReasons,
		&m.NeedsManualReview, &m.ScoreTotal, &m.ScoreBreakdown, &m.EngineVersion,
		&m.RuleVersion, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("op=match_results.get: %w", mapNotFound(err))
	}
	return &m, nil
}

// ListCandidatesForProject returns the most recent active snapshots for a
// project, best scores first.
func (r *MatchResultRepo) ListCandidatesForProject(ctx domain.Context, projectID int64, limit int64) ([]MatchResultRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, talent_id, project_id, is_knockout,
        ko_reasons, needs_manual_review, score_total, score_breakdown,
        engine_version, rule_version, created_at
    FROM ses.match_results
    WHERE project_id = $1 AND deleted_at IS NULL AND NOT is_knockout
    ORDER BY score_total DESC NULLS LAST, created_at DESC
    LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("op=match_results.candidates: %w", err)
	}
	defer rows.Close()

	var out []MatchResultRow
	for rows.Next() {
		var m MatchResultRow
		if err := rows.Scan(&m.ID, &m.TalentID, &m.ProjectID, &m.IsKnockout, &m.KoReasons,
			&m.NeedsManualReview, &m.ScoreTotal, &m.ScoreBreakdown, &m.EngineVersion,
			&m.RuleVersion, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=match_results.candidates_scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
