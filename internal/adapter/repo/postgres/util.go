package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sponto/ses-match/internal/domain"
)

// mapNotFound converts pgx.ErrNoRows into the domain sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// validatedActor trims the actor and returns ok=false when empty.
// Actor validation runs before any database access.
func validatedActor(actor string) (string, bool) {
	trimmed := strings.TrimSpace(actor)
	return trimmed, trimmed != ""
}
