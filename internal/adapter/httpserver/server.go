package httpserver

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/config"
)

// ReadinessChecker reports whether the shared dependencies are usable.
type ReadinessChecker func(ctx context.Context) error

// Server bundles the handlers' dependencies.
type Server struct {
	Cfg           config.Config
	Queue         *postgres.QueueRepo
	MatchResults  *postgres.MatchResultRepo
	Interactions  *postgres.InteractionLogRepo
	Feedback      *postgres.FeedbackRepo
	Events        *postgres.InteractionEventRepo
	Conversions   *postgres.ConversionRepo
	Talents       *postgres.TalentRepo
	Ready         ReadinessChecker
	validate      *validator.Validate
}

// NewServer wires the handler dependencies.
func NewServer(
	cfg config.Config,
	queue *postgres.QueueRepo,
	matchResults *postgres.MatchResultRepo,
	interactions *postgres.InteractionLogRepo,
	feedback *postgres.FeedbackRepo,
	events *postgres.InteractionEventRepo,
	conversions *postgres.ConversionRepo,
	talents *postgres.TalentRepo,
	ready ReadinessChecker,
) *Server {
	return &Server{
		Cfg:          cfg,
		Queue:        queue,
		MatchResults: matchResults,
		Interactions: interactions,
		Feedback:     feedback,
		Events:       events,
		Conversions:  conversions,
		Talents:      talents,
		Ready:        ready,
		validate:     validator.New(),
	}
}
