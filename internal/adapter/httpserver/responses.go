// Package httpserver contains the HTTP handlers and middleware for the
// matching API. It keeps HTTP concerns (status mapping, sanitization,
// auth, rate limits) apart from the matching and queue cores.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/observability"
)

type errorEnvelope struct {
	Code      string  `json:"code"`
	Message   string  `json:"message"`
	RequestID *string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sanitizeMessage strips control characters, redacts URLs, query strings,
// and filesystem paths, and caps the message at 240 chars.
func sanitizeMessage(message string) string {
	const maxLen = 240

	var cleaned strings.Builder
	for _, r := range message {
		switch {
		case r == '\n' || r == '\r':
			cleaned.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			cleaned.WriteRune(r)
		}
	}

	tokens := strings.Fields(cleaned.String())
	for i, token := range tokens {
		switch {
		case strings.Contains(token, "://"):
			tokens[i] = "[redacted-url]"
		case strings.Contains(token, "?"):
			base, _, _ := strings.Cut(token, "?")
			if base == "" {
				tokens[i] = "[redacted-query]"
			} else {
				tokens[i] = base + "?[redacted]"
			}
		case strings.HasPrefix(token, "/") || strings.Contains(token, `\`):
			tokens[i] = "[redacted-path]"
		}
	}

	out := strings.Join(tokens, " ")
	if runes := []rune(out); len(runes) > maxLen {
		out = string(runes[:maxLen]) + "…"
	}
	if strings.TrimSpace(out) == "" {
		return "unexpected error"
	}
	return out
}

// writeError maps a domain error onto the wire taxonomy. Authorization
// failures and server-side faults never leak detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "bad_request"
		message = sanitizeMessage(err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
		message = "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
		message = "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
		message = sanitizeMessage(err.Error())
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "conflict"
		message = sanitizeMessage(err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "too_many_requests"
		message = "too many requests"
	case errors.Is(err, domain.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "service_unavailable"
		message = "service unavailable"
	case errors.Is(err, domain.ErrDatabase):
		status, code = http.StatusInternalServerError, "database_error"
	}

	requestID := observability.RequestIDFromContext(r.Context())
	var ridPtr *string
	if requestID != "" {
		ridPtr = &requestID
	}

	logger := LoggerFrom(r)
	logger.Error("api_error",
		"code", code,
		"status", status,
		"error", err.Error(),
	)

	writeJSON(w, status, errorEnvelope{Code: code, Message: message, RequestID: ridPtr})
}
