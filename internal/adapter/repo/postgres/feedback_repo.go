package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// Feedback types accepted by POST /feedback.
var FeedbackTypes = []string{
	"thumbs_up", "thumbs_down", "review_ok", "review_ng", "review_pending",
	"accepted", "rejected", "interview_scheduled", "no_response",
}

// NG reason categories accepted alongside negative feedback.
var NgReasonCategories = []string{"tanka", "skill", "availability", "location", "flow", "other"}

// FeedbackRequest is the write model for one feedback event.
type FeedbackRequest struct {
	InteractionID    int64           `json:"interaction_id" validate:"required"`
	FeedbackType     string          `json:"feedback_type" validate:"required"`
	NgReasonCategory *string         `json:"ng_reason_category,omitempty"`
	Comment          *string         `json:"comment,omitempty"`
	Source           string          `json:"source,omitempty"`
	Meta             json.RawMessage `json:"meta,omitempty"`
}

// FeedbackStatus distinguishes a fresh insert from an idempotent replay.
type FeedbackStatus string

// Feedback statuses.
const (
	FeedbackCreated       FeedbackStatus = "created"
	FeedbackAlreadyExists FeedbackStatus = "already_exists"
)

// FeedbackResponse reports the insert outcome.
type FeedbackResponse struct {
	ID     *int64         `json:"id,omitempty"`
	Status FeedbackStatus `json:"status"`
}

// FeedbackRepo persists feedback events and serves their history.
type FeedbackRepo struct{ Pool PgxPool }

// NewFeedbackRepo constructs a FeedbackRepo with the given pool.
func NewFeedbackRepo(p PgxPool) *FeedbackRepo { return &FeedbackRepo{Pool: p} }

type interactionContext struct {
	interactionID int64
	matchResultID *int64
	matchRunID    *string
	engineVersion *string
	configVersion *string
	projectID     int64
	talentID      int64
}

func (r *FeedbackRepo) fetchInteractionContext(ctx domain.Context, interactionID int64) (interactionContext, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, match_result_id, match_run_id,
        engine_version, config_version, project_id, talent_id
    FROM ses.interaction_logs WHERE id = $1`, interactionID)

	var ic interactionContext
	err := row.Scan(&ic.interactionID, &ic.matchResultID, &ic.matchRunID,
		&ic.engineVersion, &ic.configVersion, &ic.projectID, &ic.talentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return interactionContext{}, fmt.Errorf("op=feedback.interaction_lookup: interaction %d: %w", interactionID, domain.ErrNotFound)
	}
	if err != nil {
		return interactionContext{}, fmt.Errorf("op=feedback.interaction_lookup: %w", err)
	}
	return ic, nil
}

// InsertFeedbackEvent records one feedback event. The actor is validated
// before the interaction lookup. A duplicate (interaction_id,
// feedback_type, actor) insert reports already_exists instead of failing.
func (r *FeedbackRepo) InsertFeedbackEvent(ctx domain.Context, actor string, req *FeedbackRequest) (*FeedbackResponse, error) {
	tracer := otel.Tracer("repo.feedback")
	ctx, span := tracer.Start(ctx, "feedback.Insert")
	defer span.End()

	actor, ok := validatedActor(actor)
	if !ok {
		return nil, fmt.Errorf("op=feedback.insert: actor is required: %w", domain.ErrInvalidArgument)
	}

	interaction, err := r.fetchInteractionContext(ctx, req.InteractionID)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = "gui"
	}

	q := `INSERT INTO ses.feedback_events (
        interaction_id, match_result_id, match_run_id, engine_version,
        config_version, project_id, talent_id, feedback_type,
        ng_reason_category, comment, actor, source
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
    )
    ON CONFLICT (interaction_id, feedback_type, actor, event_date) DO NOTHING
    RETURNING id`

	var id int64
	err = r.Pool.QueryRow(ctx, q,
		interaction.interactionID, interaction.matchResultID, interaction.matchRunID,
		interaction.engineVersion, interaction.configVersion, interaction.projectID,
		interaction.talentID, req.FeedbackType, req.NgReasonCategory, req.Comment,
		actor, source,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return &FeedbackResponse{Status: FeedbackAlreadyExists}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("op=feedback.insert: %w", err)
	}
	return &FeedbackResponse{ID: &id, Status: FeedbackCreated}, nil
}

// FetchFeedbackHistory returns an interaction's feedback, newest first.
// The limit is capped at 500.
func (r *FeedbackRepo) FetchFeedbackHistory(ctx domain.Context, interactionID int64, limit int64) ([]FeedbackEventRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, interaction_id, match_result_id,
        match_run_id, engine_version, config_version, project_id, talent_id,
        feedback_type, ng_reason_category, comment, actor, source, is_revoked,
        created_at
    FROM ses.feedback_events
    WHERE interaction_id = $1
    ORDER BY created_at DESC
    LIMIT $2`, interactionID, limit)
	if err != nil {
		return nil, fmt.Errorf("op=feedback.history: %w", err)
	}
	defer rows.Close()

	var events []FeedbackEventRow
	for rows.Next() {
		e, err := scanFeedbackRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
