package normalize

import (
	"errors"
	"time"
)

// ErrMissingReceivedAt is returned when no received-at timestamp is
// available; relative start dates cannot be interpreted without one.
var ErrMissingReceivedAt = errors.New("email_received_at is missing - cannot interpret relative dates")

// ResolveReceivedAt picks the reference date for relative-date
// interpretation: the primary timestamp wins, then the fallback.
func ResolveReceivedAt(emailReceivedAt, fallbackReceivedAt *time.Time) (time.Time, error) {
	if emailReceivedAt != nil {
		return emailReceivedAt.UTC().Truncate(24 * time.Hour), nil
	}
	if fallbackReceivedAt != nil {
		return fallbackReceivedAt.UTC().Truncate(24 * time.Hour), nil
	}
	return time.Time{}, ErrMissingReceivedAt
}
