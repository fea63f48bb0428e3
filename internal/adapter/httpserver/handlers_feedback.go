package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/domain"
)

// actorFrom resolves the acting identity: the X-Actor header, or the API
// key's fixed identity when header auth is in play.
func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "api"
}

// FeedbackHandler serves POST /feedback.
func (s *Server) FeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postgres.FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("invalid request body: %w", domain.ErrInvalidArgument))
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeError(w, r, fmt.Errorf("%s: %w", err, domain.ErrInvalidArgument))
			return
		}
		if !slices.Contains(postgres.FeedbackTypes, req.FeedbackType) {
			writeError(w, r, fmt.Errorf("invalid feedback_type %q: %w", req.FeedbackType, domain.ErrInvalidArgument))
			return
		}
		if req.NgReasonCategory != nil && !slices.Contains(postgres.NgReasonCategories, *req.NgReasonCategory) {
			writeError(w, r, fmt.Errorf("invalid ng_reason_category %q: %w", *req.NgReasonCategory, domain.ErrInvalidArgument))
			return
		}

		resp, err := s.Feedback.InsertFeedbackEvent(r.Context(), actorFrom(r), &req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Backfill the interaction's outcome label; a failure here must
		// not fail the feedback write.
		if resp.Status == postgres.FeedbackCreated {
			if err := s.Interactions.UpdateOutcome(r.Context(), req.InteractionID, req.FeedbackType, time.Now().UTC()); err != nil {
				LoggerFrom(r).Warn("outcome backfill failed",
					"interaction_id", req.InteractionID, "error", err.Error())
			}
		}

		status := http.StatusCreated
		if resp.Status == postgres.FeedbackAlreadyExists {
			status = http.StatusOK
		}
		writeJSON(w, status, resp)
	}
}

// FeedbackHistoryHandler serves GET /feedback/history/{interaction_id}.
func (s *Server) FeedbackHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interactionID, err := strconv.ParseInt(chi.URLParam(r, "interaction_id"), 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid interaction id: %w", domain.ErrInvalidArgument))
			return
		}

		limit := int64(100)
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				limit = n
			}
		}

		events, err := s.Feedback.FetchFeedbackHistory(r.Context(), interactionID, limit)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
			return
		}
		if events == nil {
			events = []postgres.FeedbackEventRow{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"interaction_id": interactionID, "events": events})
	}
}

// InteractionEventHandler serves POST /interactions/events.
func (s *Server) InteractionEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postgres.InteractionEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("invalid request body: %w", domain.ErrInvalidArgument))
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeError(w, r, fmt.Errorf("%s: %w", err, domain.ErrInvalidArgument))
			return
		}
		if !slices.Contains(postgres.InteractionEventTypes, req.EventType) {
			writeError(w, r, fmt.Errorf("invalid event_type %q: %w", req.EventType, domain.ErrInvalidArgument))
			return
		}

		resp, err := s.Events.InsertInteractionEvent(r.Context(), actorFrom(r), &req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := http.StatusCreated
		if resp.Status == postgres.InteractionEventUpdated {
			status = http.StatusOK
		}
		writeJSON(w, status, resp)
	}
}

// ConversionHandler serves POST /conversions.
func (s *Server) ConversionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postgres.ConversionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("invalid request body: %w", domain.ErrInvalidArgument))
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeError(w, r, fmt.Errorf("%s: %w", err, domain.ErrInvalidArgument))
			return
		}
		if !slices.Contains(postgres.ConversionStages, req.Stage) {
			writeError(w, r, fmt.Errorf("invalid stage %q: %w", req.Stage, domain.ErrInvalidArgument))
			return
		}

		resp, err := s.Conversions.InsertConversionEvent(r.Context(), actorFrom(r), &req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}
