package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// EmailRepo reads archived inbound emails (anken and jinzai) and records
// new ones. The archives are keyed by the globally unique message_id.
type EmailRepo struct{ Pool PgxPool }

// NewEmailRepo constructs an EmailRepo with the given pool.
func NewEmailRepo(p PgxPool) *EmailRepo { return &EmailRepo{Pool: p} }

// ArchivedEmail is one stored inbound email.
type ArchivedEmail struct {
	MessageID  string
	Subject    *string
	BodyText   *string
	ReceivedAt *time.Time
}

// FetchByMessageID looks the message up in the anken archive first, then
// the jinzai archive.
func (r *EmailRepo) FetchByMessageID(ctx domain.Context, messageID string) (*ArchivedEmail, error) {
	tracer := otel.Tracer("repo.emails")
	ctx, span := tracer.Start(ctx, "emails.FetchByMessageID")
	defer span.End()

	for _, table := range []string{"ses.anken_emails", "ses.jinzai_emails"} {
		row := r.Pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT message_id, subject, body_text, received_at FROM %s WHERE message_id = $1`, table),
			messageID)

		var e ArchivedEmail
		err := row.Scan(&e.MessageID, &e.Subject, &e.BodyText, &e.ReceivedAt)
		if err == nil {
			return &e, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("op=emails.fetch: %w", err)
		}
	}
	return nil, fmt.Errorf("op=emails.fetch: message %s: %w", messageID, domain.ErrNotFound)
}

// ArchiveAnken stores one project email, idempotently on message_id.
func (r *EmailRepo) ArchiveAnken(ctx domain.Context, e *ArchivedEmail) error {
	return r.archive(ctx, "ses.anken_emails", e)
}

// ArchiveJinzai stores one talent email, idempotently on message_id.
func (r *EmailRepo) ArchiveJinzai(ctx domain.Context, e *ArchivedEmail) error {
	return r.archive(ctx, "ses.jinzai_emails", e)
}

func (r *EmailRepo) archive(ctx domain.Context, table string, e *ArchivedEmail) error {
	_, err := r.Pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (message_id, subject, body_text, received_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (message_id) DO UPDATE SET
            subject = EXCLUDED.subject,
            body_text = EXCLUDED.body_text,
            received_at = EXCLUDED.received_at`, table),
		e.MessageID, e.Subject, e.BodyText, e.ReceivedAt)
	if err != nil {
		return fmt.Errorf("op=emails.archive: %w", err)
	}
	return nil
}
