package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sponto/ses-match/internal/domain"
)

// LivezHandler serves GET /livez: process is up.
func (s *Server) LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler serves GET /readyz: dependencies answer within 1s.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Ready == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}

		ctx, cancel := contextWithTimeout(r, time.Second)
		defer cancel()

		if err := s.Ready(ctx); err != nil {
			writeError(w, r, fmt.Errorf("readiness: %s: %w", err, domain.ErrUnavailable))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// HealthHandler serves GET /health: liveness plus dependency status.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps := map[string]string{"database": "ok"}
		status := http.StatusOK

		if s.Ready != nil {
			ctx, cancel := contextWithTimeout(r, time.Second)
			defer cancel()
			if err := s.Ready(ctx); err != nil {
				deps["database"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, map[string]any{
			"status":       http.StatusText(status),
			"dependencies": deps,
		})
	}
}

// SecurityTxtHandler serves GET /.well-known/security.txt per RFC 9116.
func (s *Server) SecurityTxtHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact := s.Cfg.SecurityContact
		if !strings.HasPrefix(contact, "mailto:") && !strings.HasPrefix(contact, "https://") {
			writeError(w, r, fmt.Errorf("security contact must use mailto or https scheme: %w", domain.ErrInvalidArgument))
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Contact: %s\n", contact)
		fmt.Fprintf(&b, "Expires: %s\n", time.Now().UTC().AddDate(1, 0, 0).Format(time.RFC3339))
		if s.Cfg.SecurityPolicy != "" {
			fmt.Fprintf(&b, "Policy: %s\n", s.Cfg.SecurityPolicy)
		}
		fmt.Fprintf(&b, "Preferred-Languages: en, ja\n")

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(b.String()))
	}
}

func contextWithTimeout(r *http.Request, d time.Duration) (domain.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
