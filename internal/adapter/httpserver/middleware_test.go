package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/config"
	"github.com/sponto/ses-match/internal/observability"
)

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var captured string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.NotEmpty(t, captured)
	assert.Len(t, captured, 26)
	assert.Equal(t, captured, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDPreservesIncomingHeader(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "req-upstream")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-upstream", rec.Header().Get("X-Request-Id"))
}

func TestRecovererConvertsPanicTo500(t *testing.T) {
	handler := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// No key configured: auth disabled.
	rec := httptest.NewRecorder()
	APIKeyAuth("")(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Wrong key: unauthorized, body is the literal message.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	APIKeyAuth("secret")(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)

	// Correct key passes.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "secret")
	APIKeyAuth("secret")(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecurityTxt(t *testing.T) {
	srv := &Server{Cfg: config.Config{SecurityContact: "mailto:security@sponto.example"}}

	rec := httptest.NewRecorder()
	srv.SecurityTxtHandler()(rec, httptest.NewRequest("GET", "/.well-known/security.txt", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Contact: mailto:security@sponto.example")
	assert.Contains(t, body, "Expires: ")
}

func TestSecurityTxtRejectsBadScheme(t *testing.T) {
	srv := &Server{Cfg: config.Config{SecurityContact: "ftp://nope"}}

	rec := httptest.NewRecorder()
	srv.SecurityTxtHandler()(rec, httptest.NewRequest("GET", "/.well-known/security.txt", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLivezAlwaysOK(t *testing.T) {
	srv := &Server{}
	rec := httptest.NewRecorder()
	srv.LivezHandler()(rec, httptest.NewRequest("GET", "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReflectsChecker(t *testing.T) {
	ok := &Server{Ready: func(ctx context.Context) error { return nil }}
	rec := httptest.NewRecorder()
	ok.ReadyzHandler()(rec, httptest.NewRequest("GET", "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := &Server{Ready: func(ctx context.Context) error { return assert.AnError }}
	rec = httptest.NewRecorder()
	failing.ReadyzHandler()(rec, httptest.NewRequest("GET", "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
