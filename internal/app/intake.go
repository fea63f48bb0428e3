package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/extractor"
	"github.com/sponto/ses-match/internal/normalize"
	"github.com/sponto/ses-match/internal/queue"
)

// ExtractorVersion tags queue rows created by this binary.
const ExtractorVersion = "go-v1"

// Intake turns one inbound email into an archived body plus a queue row.
// The ingestor (Gmail or otherwise) is an external collaborator; this is
// the boundary it hands rows to.
type Intake struct {
	Queue  *postgres.QueueRepo
	Emails *postgres.EmailRepo
}

// EnqueueProjectEmail archives a project email and upserts its queue row.
// The priority comes from a dry extraction pass over the body; duplicate
// message ids collapse through the store's idempotent upsert.
func (i *Intake) EnqueueProjectEmail(ctx context.Context, messageID, subject, body string, receivedAt time.Time) (*queue.ExtractionJob, error) {
	if err := i.Emails.ArchiveAnken(ctx, &postgres.ArchivedEmail{
		MessageID:  messageID,
		Subject:    &subject,
		BodyText:   &body,
		ReceivedAt: &receivedAt,
	}); err != nil {
		return nil, fmt.Errorf("op=intake.archive: %w", err)
	}

	job := buildJob(messageID, subject, body, receivedAt)
	if err := i.Queue.Upsert(ctx, &job); err != nil {
		return nil, fmt.Errorf("op=intake.enqueue: %w", err)
	}
	return &job, nil
}

// EnqueueTalentEmail archives a talent email and upserts its queue row.
func (i *Intake) EnqueueTalentEmail(ctx context.Context, messageID, subject, body string, receivedAt time.Time) (*queue.ExtractionJob, error) {
	if err := i.Emails.ArchiveJinzai(ctx, &postgres.ArchivedEmail{
		MessageID:  messageID,
		Subject:    &subject,
		BodyText:   &body,
		ReceivedAt: &receivedAt,
	}); err != nil {
		return nil, fmt.Errorf("op=intake.archive: %w", err)
	}

	job := buildJob(messageID, subject, body, receivedAt)
	if err := i.Queue.Upsert(ctx, &job); err != nil {
		return nil, fmt.Errorf("op=intake.enqueue: %w", err)
	}
	return &job, nil
}

func buildJob(messageID, subject, body string, receivedAt time.Time) queue.ExtractionJob {
	job := queue.NewJob(messageID, subject, receivedAt, normalize.SubjectHash(subject))

	quality, decision := extractor.EvaluateQuality(extractor.ExtractPartialFields(body))
	job.Priority = extractor.CalculatePriority(quality)
	job.RecommendedMethod = &decision.RecommendedMethod

	version := ExtractorVersion
	job.ExtractorVersion = &version
	return job
}
