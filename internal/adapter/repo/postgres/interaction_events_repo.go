package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// Interaction event types recorded from the GUI.
var InteractionEventTypes = []string{
	"viewed_candidate_detail", "copied_template", "clicked_contact", "shortlisted",
}

// InteractionEventRequest is the write model for one GUI event.
type InteractionEventRequest struct {
	InteractionID  int64           `json:"interaction_id" validate:"required"`
	EventType      string          `json:"event_type" validate:"required"`
	IdempotencyKey string          `json:"idempotency_key" validate:"required"`
	Source         string          `json:"source,omitempty"`
	Meta           json.RawMessage `json:"meta,omitempty"`
}

// InteractionEventStatus distinguishes created from updated rows.
type InteractionEventStatus string

// Interaction event statuses.
const (
	InteractionEventCreated InteractionEventStatus = "created"
	InteractionEventUpdated InteractionEventStatus = "updated"
)

// InteractionEventResponse reports the insert outcome.
type InteractionEventResponse struct {
	ID     int64                  `json:"id"`
	Status InteractionEventStatus `json:"status"`
}

// InteractionEventRepo persists GUI interaction events.
type InteractionEventRepo struct{ Pool PgxPool }

// NewInteractionEventRepo constructs an InteractionEventRepo with the given pool.
func NewInteractionEventRepo(p PgxPool) *InteractionEventRepo { return &InteractionEventRepo{Pool: p} }

// InsertInteractionEvent records one event.
//
// shortlisted is at most one row per (interaction, actor): an existing
// shortlisted row is updated in place, carrying the toggle state in meta.
// Every other type dedups globally on idempotency_key, updating meta and
// source on replay; xmax = 0 distinguishes created from updated.
func (r *InteractionEventRepo) InsertInteractionEvent(ctx domain.Context, actor string, req *InteractionEventRequest) (*InteractionEventResponse, error) {
	tracer := otel.Tracer("repo.interaction_events")
	ctx, span := tracer.Start(ctx, "interaction_events.Insert")
	defer span.End()

	actor, ok := validatedActor(actor)
	if !ok {
		return nil, fmt.Errorf("op=interaction_events.insert: actor is required: %w", domain.ErrInvalidArgument)
	}

	source := req.Source
	if source == "" {
		source = "gui"
	}

	if req.EventType == "shortlisted" {
		row := r.Pool.QueryRow(ctx, `UPDATE ses.interaction_events
            SET meta = $1, idempotency_key = $2, source = $3, created_at = NOW()
            WHERE interaction_id = $4 AND actor = $5 AND event_type = 'shortlisted'
            RETURNING id`,
			req.Meta, req.IdempotencyKey, source, req.InteractionID, actor)

		var id int64
		err := row.Scan(&id)
		if err == nil {
			return &InteractionEventResponse{ID: id, Status: InteractionEventUpdated}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("op=interaction_events.shortlist_update: %w", err)
		}
	}

	row := r.Pool.QueryRow(ctx, `INSERT INTO ses.interaction_events (
        interaction_id, event_type, actor, source, idempotency_key, meta
    ) VALUES (
        $1, $2, $3, $4, $5, $6
    )
    ON CONFLICT (idempotency_key) DO UPDATE
    SET meta = EXCLUDED.meta,
        source = EXCLUDED.source,
        created_at = NOW()
    RETURNING id, xmax = 0 AS inserted`,
		req.InteractionID, req.EventType, actor, source, req.IdempotencyKey, req.Meta)

	var id int64
	var inserted bool
	if err := row.Scan(&id, &inserted); err != nil {
		return nil, fmt.Errorf("op=interaction_events.insert: %w", err)
	}

	status := InteractionEventUpdated
	if inserted {
		status = InteractionEventCreated
	}
	return &InteractionEventResponse{ID: id, Status: status}, nil
}
