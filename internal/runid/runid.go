// Package runid provides the process-level match run ID.
//
// Each process gets one ULID at first access; every snapshot and
// interaction log written by that process shares it, which keeps inserts
// idempotent within a run while separating runs (even same-day ones).
package runid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	once  sync.Once
	runID string
)

// Get returns the process-level run ID: generated once, 26 chars,
// time-ordered, URL-safe.
func Get() string {
	once.Do(func() {
		runID = Generate()
	})
	return runID
}

// Generate returns a fresh ULID for sub-operations (request IDs, batch
// sub-runs).
func Generate() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
