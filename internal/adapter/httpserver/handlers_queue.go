package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/domain"
)

// DashboardHandler serves GET /queue/dashboard.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := s.Queue.Dashboard(r.Context())
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

func parseQueueFilter(r *http.Request) (*postgres.QueueJobFilter, *postgres.Pagination, error) {
	q := r.URL.Query()
	filter := &postgres.QueueJobFilter{}

	if v := q.Get("status"); v != "" {
		switch v {
		case "pending", "processing", "completed":
			filter.Status = &v
		default:
			return nil, nil, fmt.Errorf("invalid status %q: %w", v, domain.ErrInvalidArgument)
		}
	}
	if v := q.Get("requires_manual_review"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid requires_manual_review: %w", domain.ErrInvalidArgument)
		}
		filter.RequiresManualReview = &b
	}
	if v := q.Get("canary_target"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid canary_target: %w", domain.ErrInvalidArgument)
		}
		filter.CanaryTarget = &b
	}
	if v := q.Get("final_method"); v != "" {
		filter.FinalMethod = &v
	}
	if v := q.Get("manual_review_reason"); v != "" {
		filter.ManualReviewReason = &v
	}
	if v := q.Get("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid created_after: %w", domain.ErrInvalidArgument)
		}
		filter.CreatedAfter = &t
	}
	if v := q.Get("created_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid created_before: %w", domain.ErrInvalidArgument)
		}
		filter.CreatedBefore = &t
	}

	page := &postgres.Pagination{Limit: 50, Offset: 0}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 200 {
			return nil, nil, fmt.Errorf("invalid limit: %w", domain.ErrInvalidArgument)
		}
		page.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, nil, fmt.Errorf("invalid offset: %w", domain.ErrInvalidArgument)
		}
		page.Offset = n
	}

	return filter, page, nil
}

// ListJobsHandler serves GET /queue/jobs.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page, err := parseQueueFilter(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp, err := s.Queue.ListJobs(r.Context(), filter, page)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseIncludes(r *http.Request) postgres.JobDetailIncludes {
	includes := postgres.JobDetailIncludes{Limit: 20, Days: 30}

	for _, part := range strings.Split(r.URL.Query().Get("include"), ",") {
		switch strings.TrimSpace(part) {
		case "entity":
			includes.IncludeEntity = true
		case "matches":
			includes.IncludeMatches = true
		case "interactions":
			includes.IncludeInteractions = true
		case "feedback":
			includes.IncludeFeedback = true
		case "events":
			includes.IncludeEvents = true
		case "source_text":
			includes.IncludeSourceText = true
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			includes.Limit = n
		}
	}
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			includes.Days = int32(n)
		}
	}
	return includes
}

// JobDetailHandler serves GET /queue/jobs/{id}.
func (s *Server) JobDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid job id: %w", domain.ErrInvalidArgument))
			return
		}

		detail, err := s.Queue.GetJobDetailWithIncludes(
			r.Context(), id, parseIncludes(r),
			s.Cfg.AllowSourceText, s.Cfg.JobDetailStatementTimeoutMS,
		)
		if err != nil {
			if !errors.Is(err, domain.ErrUnavailable) {
				err = fmt.Errorf("%w: %s", domain.ErrDatabase, err)
			}
			writeError(w, r, err)
			return
		}
		if detail == nil {
			writeError(w, r, fmt.Errorf("job %d: %w", id, domain.ErrNotFound))
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// RetryJobHandler serves POST /queue/retry/{id}.
func (s *Server) RetryJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid job id: %w", domain.ErrInvalidArgument))
			return
		}

		if err := s.Queue.RetryJob(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "pending"})
	}
}
