package postgres

import (
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// Conversion stages in funnel order; lost can occur at any stage.
var ConversionStages = []string{
	"contacted", "entry", "interview_scheduled", "offer", "contract_signed", "lost",
}

// ConversionRequest is the write model for one conversion event. The
// interaction id is optional; talent/project always identify the pair.
type ConversionRequest struct {
	InteractionID *int64          `json:"interaction_id,omitempty"`
	TalentID      int64           `json:"talent_id" validate:"required"`
	ProjectID     int64           `json:"project_id" validate:"required"`
	Stage         string          `json:"stage" validate:"required"`
	Source        string          `json:"source,omitempty"`
	Meta          json.RawMessage `json:"meta,omitempty"`
}

// ConversionResponse reports the insert outcome.
type ConversionResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ConversionRepo persists conversion events. The table carries no unique
// constraint; idempotency is the caller's concern.
type ConversionRepo struct{ Pool PgxPool }

// NewConversionRepo constructs a ConversionRepo with the given pool.
func NewConversionRepo(p PgxPool) *ConversionRepo { return &ConversionRepo{Pool: p} }

// InsertConversionEvent records one conversion.
func (r *ConversionRepo) InsertConversionEvent(ctx domain.Context, actor string, req *ConversionRequest) (*ConversionResponse, error) {
	tracer := otel.Tracer("repo.conversions")
	ctx, span := tracer.Start(ctx, "conversions.Insert")
	defer span.End()

	actor, ok := validatedActor(actor)
	if !ok {
		return nil, fmt.Errorf("op=conversions.insert: actor is required: %w", domain.ErrInvalidArgument)
	}

	source := req.Source
	if source == "" {
		source = "gui"
	}

	var id int64
	err := r.Pool.QueryRow(ctx, `INSERT INTO ses.conversion_events (
        interaction_id, talent_id, project_id, stage, actor, source, meta
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7
    )
    RETURNING id`,
		req.InteractionID, req.TalentID, req.ProjectID, req.Stage, actor, source, req.Meta,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("op=conversions.insert: %w", err)
	}
	return &ConversionResponse{ID: id, Status: "created"}, nil
}
