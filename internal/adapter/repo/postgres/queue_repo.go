package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/queue"
)

// QueueRepo is the durable mirror of the extraction queue.
type QueueRepo struct{ Pool PgxPool }

// NewQueueRepo constructs a QueueRepo with the given pool.
func NewQueueRepo(p PgxPool) *QueueRepo { return &QueueRepo{Pool: p} }

func queueSpan(ctx domain.Context, op string) (domain.Context, func()) {
	tracer := otel.Tracer("repo.queue")
	ctx, span := tracer.Start(ctx, op)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "ses.extraction_queue"),
	)
	return ctx, func() { span.End() }
}

// Upsert inserts a queue row, overwriting every mutable column on a
// message_id conflict. created_at is preserved on conflict.
func (r *QueueRepo) Upsert(ctx domain.Context, job *queue.ExtractionJob) error {
	ctx, end := queueSpan(ctx, "queue.Upsert")
	defer end()

	q := `INSERT INTO ses.extraction_queue (
        message_id, email_subject, email_received_at, subject_hash,
        status, priority, locked_by, retry_count, next_retry_at, last_error,
        partial_fields, decision_reason, recommended_method, final_method,
        extractor_version, rule_version, created_at, processing_started_at,
        completed_at, updated_at, llm_latency_ms, requires_manual_review,
        manual_review_reason, reprocess_after, canary_target
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
        $21, $22, $23, $24, $25
    )
    ON CONFLICT (message_id) DO UPDATE SET
        email_subject = EXCLUDED.email_subject,
        email_received_at = EXCLUDED.email_received_at,
        subject_hash = EXCLUDED.subject_hash,
        status = EXCLUDED.status,
        priority = EXCLUDED.priority,
        locked_by = EXCLUDED.locked_by,
        retry_count = EXCLUDED.retry_count,
        next_retry_at = EXCLUDED.next_retry_at,
        last_error = EXCLUDED.last_error,
        partial_fields = EXCLUDED.partial_fields,
        decision_reason = EXCLUDED.decision_reason,
        recommended_method = EXCLUDED.recommended_method,
        final_method = EXCLUDED.final_method,
        extractor_version = EXCLUDED.extractor_version,
        rule_version = EXCLUDED.rule_version,
        processing_started_at = EXCLUDED.processing_started_at,
        completed_at = EXCLUDED.completed_at,
        updated_at = EXCLUDED.updated_at,
        llm_latency_ms = EXCLUDED.llm_latency_ms,
        requires_manual_review = EXCLUDED.requires_manual_review,
        manual_review_reason = EXCLUDED.manual_review_reason,
        reprocess_after = EXCLUDED.reprocess_after,
        canary_target = EXCLUDED.canary_target`

	var recommended, final *string
	if job.RecommendedMethod != nil {
		s := string(*job.RecommendedMethod)
		recommended = &s
	}
	if job.FinalMethod != nil {
		s := string(*job.FinalMethod)
		final = &s
	}

	_, err := r.Pool.Exec(ctx, q,
		job.MessageID, job.EmailSubject, job.EmailReceivedAt, job.SubjectHash,
		string(job.Status), job.Priority, job.LockedBy, job.RetryCount, job.NextRetryAt, job.LastError,
		job.PartialFields, job.DecisionReason, recommended, final,
		job.ExtractorVersion, job.RuleVersion, job.CreatedAt, job.ProcessingStartedAt,
		job.CompletedAt, job.UpdatedAt, job.LLMLatencyMS, job.RequiresManualReview,
		job.ManualReviewReason, job.ReprocessAfter, job.CanaryTarget,
	)
	if err != nil {
		return fmt.Errorf("op=queue.upsert: %w", err)
	}
	return nil
}

const jobColumns = `id, message_id, email_subject, email_received_at, subject_hash,
    status, priority, locked_by, retry_count, next_retry_at, last_error,
    partial_fields, decision_reason, recommended_method, final_method,
    extractor_version, rule_version, created_at, processing_started_at,
    completed_at, updated_at, llm_latency_ms, requires_manual_review,
    manual_review_reason, reprocess_after, canary_target`

func scanJob(row pgx.Row) (queue.ExtractionJob, error) {
	var j queue.ExtractionJob
	var status string
	var recommended, final *string

	err := row.Scan(
		&j.ID, &j.MessageID, &j.EmailSubject, &j.EmailReceivedAt, &j.SubjectHash,
		&status, &j.Priority, &j.LockedBy, &j.RetryCount, &j.NextRetryAt, &j.LastError,
		&j.PartialFields, &j.DecisionReason, &recommended, &final,
		&j.ExtractorVersion, &j.RuleVersion, &j.CreatedAt, &j.ProcessingStartedAt,
		&j.CompletedAt, &j.UpdatedAt, &j.LLMLatencyMS, &j.RequiresManualReview,
		&j.ManualReviewReason, &j.ReprocessAfter, &j.CanaryTarget,
	)
	if err != nil {
		return queue.ExtractionJob{}, err
	}

	switch status {
	case "pending", "processing", "completed":
		j.Status = queue.Status(status)
	default:
		return queue.ExtractionJob{}, fmt.Errorf("unknown status: %s", status)
	}
	if recommended != nil {
		m := queue.RecommendedMethod(*recommended)
		j.RecommendedMethod = &m
	}
	if final != nil {
		m := queue.FinalMethod(*final)
		j.FinalMethod = &m
	}
	return j, nil
}

// LockNext atomically claims the next eligible pending job for workerID.
// One statement: the row is selected with FOR UPDATE SKIP LOCKED, flipped
// to processing, and returned, guaranteeing at-most-one worker per job.
// Returns (nil, nil) when the queue is drained.
func (r *QueueRepo) LockNext(ctx domain.Context, workerID string, now time.Time) (*queue.ExtractionJob, error) {
	ctx, end := queueSpan(ctx, "queue.LockNext")
	defer end()

	q := `UPDATE ses.extraction_queue
SET
    status = 'processing',
    locked_by = $1,
    processing_started_at = $2,
    updated_at = $2
WHERE id = (
    SELECT id
    FROM ses.extraction_queue
    WHERE status = 'pending'
      AND (next_retry_at IS NULL OR next_retry_at <= $2)
      AND (reprocess_after IS NULL OR reprocess_after <= $2)
    ORDER BY priority DESC, created_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + jobColumns

	job, err := scanJob(r.Pool.QueryRow(ctx, q, workerID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("op=queue.lock_next: %w", err)
	}
	return &job, nil
}

// RecoverStuck flips processing rows whose processing_started_at is older
// than maxProcessing back to pending, clearing the lock. Returns the
// number of recovered rows.
func (r *QueueRepo) RecoverStuck(ctx domain.Context, now time.Time, maxProcessing time.Duration) (int64, error) {
	ctx, end := queueSpan(ctx, "queue.RecoverStuck")
	defer end()

	cutoff := now.Add(-maxProcessing)
	q := `UPDATE ses.extraction_queue SET
        status = 'pending',
        locked_by = NULL,
        next_retry_at = $1,
        updated_at = $1
    WHERE status = 'processing'
      AND COALESCE(processing_started_at, updated_at) <= $2`

	tag, err := r.Pool.Exec(ctx, q, now, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=queue.recover_stuck: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetByMessageID loads a job by its external key.
func (r *QueueRepo) GetByMessageID(ctx domain.Context, messageID string) (queue.ExtractionJob, error) {
	ctx, end := queueSpan(ctx, "queue.GetByMessageID")
	defer end()

	q := `SELECT ` + jobColumns + ` FROM ses.extraction_queue WHERE message_id = $1`
	job, err := scanJob(r.Pool.QueryRow(ctx, q, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return queue.ExtractionJob{}, fmt.Errorf("op=queue.get_by_message_id: %w", domain.ErrNotFound)
	}
	if err != nil {
		return queue.ExtractionJob{}, fmt.Errorf("op=queue.get_by_message_id: %w", err)
	}
	return job, nil
}

// ListJobs returns a filtered page. The WHERE clause is built exclusively
// from "AND column OP $n" fragments; limit/offset are the last two
// placeholders; limit+1 rows are fetched to derive has_more.
func (r *QueueRepo) ListJobs(ctx domain.Context, filter *QueueJobFilter, page *Pagination) (*QueueJobListResponse, error) {
	ctx, end := queueSpan(ctx, "queue.ListJobs")
	defer end()

	var sb strings.Builder
	sb.WriteString(`SELECT id, message_id, status, priority, retry_count, next_retry_at,
        final_method, requires_manual_review, manual_review_reason, decision_reason,
        created_at, updated_at
    FROM ses.extraction_queue WHERE 1=1`)

	var args []any
	appendEq := func(column string, value any) {
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s = $%d", column, len(args))
	}

	if filter.Status != nil {
		appendEq("status", *filter.Status)
	}
	if filter.RequiresManualReview != nil {
		appendEq("requires_manual_review", *filter.RequiresManualReview)
	}
	if filter.CanaryTarget != nil {
		appendEq("canary_target", *filter.CanaryTarget)
	}
	if filter.FinalMethod != nil {
		appendEq("final_method", *filter.FinalMethod)
	}
	if filter.ManualReviewReason != nil {
		appendEq("manual_review_reason", *filter.ManualReviewReason)
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}

	fetchLimit := page.Limit + 1
	args = append(args, fetchLimit, page.Offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("op=queue.list_jobs: %w", err)
	}
	defer rows.Close()

	var items []QueueJobListItem
	for rows.Next() {
		var item QueueJobListItem
		if err := rows.Scan(
			&item.ID, &item.MessageID, &item.Status, &item.Priority, &item.RetryCount,
			&item.NextRetryAt, &item.FinalMethod, &item.RequiresManualReview,
			&item.ManualReviewReason, &item.DecisionReason, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("op=queue.list_jobs_scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=queue.list_jobs_rows: %w", err)
	}

	hasMore := int64(len(items)) > page.Limit
	if hasMore {
		items = items[:page.Limit]
	}

	return &QueueJobListResponse{
		Items:   items,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: hasMore,
	}, nil
}

// RetryJob resets a completed job back to pending. Non-completed rows are
// a conflict; missing rows are not found.
func (r *QueueRepo) RetryJob(ctx domain.Context, id int64) error {
	ctx, end := queueSpan(ctx, "queue.RetryJob")
	defer end()

	tag, err := r.Pool.Exec(ctx, `UPDATE ses.extraction_queue SET
        status = 'pending', locked_by = NULL, processing_started_at = NULL,
        completed_at = NULL, next_retry_at = NULL, retry_count = 0,
        requires_manual_review = false, manual_review_reason = NULL,
        updated_at = NOW()
    WHERE id = $1 AND status = 'completed'`, id)
	if err != nil {
		return fmt.Errorf("op=queue.retry_job: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status string
	err = r.Pool.QueryRow(ctx, `SELECT status FROM ses.extraction_queue WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("op=queue.retry_job: job %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("op=queue.retry_job: %w", err)
	}
	return fmt.Errorf("op=queue.retry_job: job %d is %s and cannot be retried: %w", id, status, domain.ErrConflict)
}

// Dashboard runs the single aggregate query behind /queue/dashboard.
func (r *QueueRepo) Dashboard(ctx domain.Context) (*QueueDashboard, error) {
	ctx, end := queueSpan(ctx, "queue.Dashboard")
	defer end()

	q := `SELECT
        COUNT(*) FILTER (WHERE status = 'pending') AS pending,
        COUNT(*) FILTER (WHERE status = 'processing') AS processing,
        COUNT(*) FILTER (WHERE status = 'completed') AS completed,
        COUNT(*) FILTER (WHERE requires_manual_review) AS manual_review_count,
        COUNT(*) FILTER (WHERE last_error IS NOT NULL) AS error_count,
        COUNT(*) FILTER (
            WHERE status = 'processing'
              AND processing_started_at <= timezone('utc', NOW()) - INTERVAL '10 minutes'
        ) AS stale_processing_count,
        COALESCE(MAX(updated_at), timezone('utc', NOW())) AS updated_at
    FROM ses.extraction_queue`

	var d QueueDashboard
	err := r.Pool.QueryRow(ctx, q).Scan(
		&d.StatusCounts.Pending, &d.StatusCounts.Processing, &d.StatusCounts.Completed,
		&d.ManualReviewCount, &d.ErrorCount, &d.StaleProcessingCount, &d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("op=queue.dashboard: %w", err)
	}
	return &d, nil
}

// Complete applies a handler outcome to a locked row.
func (r *QueueRepo) Complete(ctx domain.Context, id int64, outcome *queue.Outcome, now time.Time) error {
	ctx, end := queueSpan(ctx, "queue.Complete")
	defer end()

	_, err := r.Pool.Exec(ctx, `UPDATE ses.extraction_queue SET
        status = 'completed', final_method = $2, partial_fields = $3,
        decision_reason = $4, manual_review_reason = $5, llm_latency_ms = $6,
        requires_manual_review = $7, completed_at = $8, updated_at = $8,
        locked_by = NULL
    WHERE id = $1`,
		id, string(outcome.FinalMethod), outcome.PartialFields,
		outcome.DecisionReason, outcome.ManualReviewReason, outcome.LLMLatencyMS,
		outcome.RequiresManualReview, now,
	)
	if err != nil {
		return fmt.Errorf("op=queue.complete: %w", err)
	}
	return nil
}

// FailPermanent terminates a locked row as completed/manual_review.
func (r *QueueRepo) FailPermanent(ctx domain.Context, id int64, msg string, now time.Time) error {
	ctx, end := queueSpan(ctx, "queue.FailPermanent")
	defer end()

	_, err := r.Pool.Exec(ctx, `UPDATE ses.extraction_queue SET
        status = 'completed', final_method = 'manual_review', last_error = $2,
        decision_reason = $2, manual_review_reason = $2,
        requires_manual_review = true, completed_at = $3, updated_at = $3,
        locked_by = NULL
    WHERE id = $1`, id, msg, now)
	if err != nil {
		return fmt.Errorf("op=queue.fail_permanent: %w", err)
	}
	return nil
}

// FailRetryable sends a locked row back to pending with backoff, clearing
// every processing-scoped field.
func (r *QueueRepo) FailRetryable(ctx domain.Context, id int64, msg string, retryAt, now time.Time) error {
	ctx, end := queueSpan(ctx, "queue.FailRetryable")
	defer end()

	_, err := r.Pool.Exec(ctx, `UPDATE ses.extraction_queue SET
        status = 'pending', retry_count = retry_count + 1, next_retry_at = $2,
        last_error = $3, final_method = NULL, partial_fields = NULL,
        decision_reason = NULL, manual_review_reason = NULL, llm_latency_ms = NULL,
        completed_at = NULL, processing_started_at = NULL,
        requires_manual_review = false, updated_at = $4, locked_by = NULL
    WHERE id = $1`, id, retryAt, msg, now)
	if err != nil {
		return fmt.Errorf("op=queue.fail_retryable: %w", err)
	}
	return nil
}
