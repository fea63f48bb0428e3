package postgres

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sponto/ses-match/internal/domain"
)

// InteractionLogRepo persists per-run interaction rows.
type InteractionLogRepo struct{ Pool PgxPool }

// NewInteractionLogRepo constructs an InteractionLogRepo with the given pool.
func NewInteractionLogRepo(p PgxPool) *InteractionLogRepo { return &InteractionLogRepo{Pool: p} }

// InsertInteractionLog inserts one log row and returns its id.
//
// The (match_run_id, talent_id, project_id) unique constraint absorbs
// retries within a run; on conflict only non-null incoming values
// overwrite (coalesce pattern), so a sparse retry cannot erase data.
func (r *InteractionLogRepo) InsertInteractionLog(ctx domain.Context, log *domain.InteractionLogInsert) (int64, error) {
	tracer := otel.Tracer("repo.interaction_logs")
	ctx, span := tracer.Start(ctx, "interaction_logs.Insert")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "ses.interaction_logs"),
	)

	createdAt := time.Now().UTC()
	if log.CreatedAt != nil {
		createdAt = *log.CreatedAt
	}

	q := `INSERT INTO ses.interaction_logs (
        match_result_id, talent_id, project_id, match_run_id,
        engine_version, config_version, two_tower_score, two_tower_embedder,
        two_tower_version, business_score, outcome, feedback_at, variant, created_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
    )
    ON CONFLICT (match_run_id, talent_id, project_id) DO UPDATE SET
        match_result_id = COALESCE(EXCLUDED.match_result_id, ses.interaction_logs.match_result_id),
        engine_version = COALESCE(EXCLUDED.engine_version, ses.interaction_logs.engine_version),
        config_version = COALESCE(EXCLUDED.config_version, ses.interaction_logs.config_version),
        two_tower_score = COALESCE(EXCLUDED.two_tower_score, ses.interaction_logs.two_tower_score),
        two_tower_embedder = COALESCE(EXCLUDED.two_tower_embedder, ses.interaction_logs.two_tower_embedder),
        two_tower_version = COALESCE(EXCLUDED.two_tower_version, ses.interaction_logs.two_tower_version),
        business_score = COALESCE(EXCLUDED.business_score, ses.interaction_logs.business_score),
        variant = COALESCE(EXCLUDED.variant, ses.interaction_logs.variant)
    RETURNING id`

	var id int64
	err := r.Pool.QueryRow(ctx, q,
		log.MatchResultID, log.TalentID, log.ProjectID, log.MatchRunID,
		log.EngineVersion, log.ConfigVersion, log.TwoTowerScore, log.TwoTowerEmbedder,
		log.TwoTowerVersion, log.BusinessScore, log.Outcome, log.FeedbackAt,
		log.Variant, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("op=interaction_logs.insert: %w", err)
	}
	return id, nil
}

// GetByID loads one interaction row.
func (r *InteractionLogRepo) GetByID(ctx domain.Context, id int64) (*InteractionLogRow, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, match_result_id, talent_id, project_id,
        match_run_id, engine_version, config_version, two_tower_score,
        two_tower_embedder, two_tower_version, business_score, outcome,
        feedback_at, variant, created_at
    FROM ses.interaction_logs WHERE id = $1`, id)

	var it InteractionLogRow
	err := row.Scan(&it.ID, &it.MatchResultID, &it.TalentID, &it.ProjectID,
		&it.MatchRunID, &it.EngineVersion, &it.ConfigVersion, &it.TwoTowerScore,
		&it.TwoTowerEmbedder, &it.TwoTowerVersion, &it.BusinessScore,
		&it.Outcome, &it.FeedbackAt, &it.Variant, &it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("op=interaction_logs.get: %w", mapNotFound(err))
	}
	return &it, nil
}

// UpdateOutcome backfills the outcome and feedback timestamp once a
// feedback or conversion label arrives.
func (r *InteractionLogRepo) UpdateOutcome(ctx domain.Context, id int64, outcome string, feedbackAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `UPDATE ses.interaction_logs SET
        outcome = $2, feedback_at = $3
    WHERE id = $1`, id, outcome, feedbackAt)
	if err != nil {
		return fmt.Errorf("op=interaction_logs.update_outcome: %w", err)
	}
	return nil
}
