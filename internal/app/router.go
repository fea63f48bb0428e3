// Package app wires application components and startup helpers: the HTTP
// router, the extraction worker loop, and the stuck-job recovery sweeper.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sponto/ses-match/internal/adapter/httpserver"
	"github.com/sponto/ses-match/internal/config"
	"github.com/sponto/ses-match/internal/observability"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces.
// Empty input falls back to ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middleware and routes.
// Every route is mounted under both /api and /api/v1.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()

	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(30 * time.Second))
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/api", apiRoutes(cfg, srv))
	r.Mount("/api/v1", apiRoutes(cfg, srv))

	// Unversioned operational endpoints.
	r.Get("/livez", srv.LivezHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/health", srv.HealthHandler())
	r.Get("/.well-known/security.txt", srv.SecurityTxtHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}

func apiRoutes(cfg config.Config, srv *httpserver.Server) chi.Router {
	r := chi.NewRouter()

	r.Use(httprate.Limit(cfg.RateLimitGlobalBurst, time.Second, httprate.WithKeyFuncs(httprate.KeyByIP)))
	r.Use(httpserver.APIKeyAuth(cfg.APIKey))

	// Queue
	r.Get("/queue/dashboard", srv.DashboardHandler())
	r.Get("/queue/jobs", srv.ListJobsHandler())
	r.Get("/queue/jobs/{id}", srv.JobDetailHandler())
	r.Group(func(rr chi.Router) {
		rr.Use(httprate.Limit(cfg.RateLimitRetryBurst, time.Second, httprate.WithKeyFuncs(httprate.KeyByIP)))
		rr.Post("/queue/retry/{id}", srv.RetryJobHandler())
	})

	// Matching
	r.Group(func(rr chi.Router) {
		rr.Use(httprate.Limit(cfg.MatchRateBurst(), time.Second, httprate.WithKeyFuncs(httprate.KeyByIP)))
		rr.Post("/match", srv.MatchHandler())
	})
	r.Get("/matches/{id}", srv.GetMatchHandler())
	r.Get("/projects/{id}/candidates", srv.ProjectCandidatesHandler())

	// Feedback / events / conversions
	r.Post("/feedback", srv.FeedbackHandler())
	r.Get("/feedback/history/{interaction_id}", srv.FeedbackHistoryHandler())
	r.Post("/interactions/events", srv.InteractionEventHandler())
	r.Post("/conversions", srv.ConversionHandler())

	// Health. These routes also pass the API-wide limiter above, so the
	// global limit binds; the health limit (five times the global one by
	// default) does not raise it.
	r.Group(func(rr chi.Router) {
		rr.Use(httprate.Limit(cfg.HealthRateBurst(), time.Second, httprate.WithKeyFuncs(httprate.KeyByIP)))
		rr.Get("/livez", srv.LivezHandler())
		rr.Get("/readyz", srv.ReadyzHandler())
		rr.Get("/health", srv.HealthHandler())
	})

	return r
}
