package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Handler processes one locked job. Returning a *RetryableError (or a
// context cancellation) sends the job back to pending with backoff; a
// *PermanentError terminates it as manual_review; any other error is
// treated as retryable with the default backoff.
type Handler func(ctx context.Context, job *ExtractionJob) (*Outcome, error)

// ExtractionQueue is the in-memory reference implementation of the queue
// state machine. The Postgres store mirrors its transitions; this model is
// also what the worker tests exercise.
type ExtractionQueue struct {
	mu     sync.Mutex
	jobs   []ExtractionJob
	nextID int64
}

// NewExtractionQueue returns an empty queue.
func NewExtractionQueue() *ExtractionQueue {
	return &ExtractionQueue{}
}

// Enqueue appends a job unless its message_id already exists or an
// in-flight (non-completed) job shares its subject_hash.
func (q *ExtractionQueue) Enqueue(job ExtractionJob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.jobs {
		existing := &q.jobs[i]
		if existing.MessageID == job.MessageID {
			return
		}
		if existing.SubjectHash == job.SubjectHash && existing.Status != StatusCompleted {
			return
		}
	}

	q.nextID++
	job.ID = q.nextID
	q.jobs = append(q.jobs, job)
}

// Jobs returns a snapshot copy of all rows.
func (q *ExtractionQueue) Jobs() []ExtractionJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]ExtractionJob, len(q.jobs))
	copy(out, q.jobs)
	return out
}

// pollNext picks the eligible pending row with the highest priority,
// breaking ties by smallest id (FIFO). Caller holds the lock.
func (q *ExtractionQueue) pollNext(now time.Time) int {
	best := -1
	for i := range q.jobs {
		job := &q.jobs[i]
		if job.Status != StatusPending {
			continue
		}
		if job.NextRetryAt != nil && job.NextRetryAt.After(now) {
			continue
		}
		if job.ReprocessAfter != nil && job.ReprocessAfter.After(now) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := &q.jobs[best]
		if job.Priority > b.Priority || (job.Priority == b.Priority && job.ID < b.ID) {
			best = i
		}
	}
	return best
}

// ProcessNext locks the next eligible job for workerID, runs the handler,
// and applies the outcome. The pending → processing transition is visible
// before the handler runs. Returns the resulting status, or nil when no
// job was eligible.
func (q *ExtractionQueue) ProcessNext(ctx context.Context, workerID string, handler Handler) *Status {
	now := time.Now().UTC()

	q.mu.Lock()
	idx := q.pollNext(now)
	if idx == -1 {
		q.mu.Unlock()
		return nil
	}
	q.jobs[idx].Status = StatusProcessing
	q.jobs[idx].LockedBy = &workerID
	q.jobs[idx].ProcessingStartedAt = &now
	q.jobs[idx].UpdatedAt = now
	job := q.jobs[idx]
	q.mu.Unlock()

	outcome, err := handler(ctx, &job)

	q.mu.Lock()
	defer q.mu.Unlock()
	finished := time.Now().UTC()

	switch {
	case err == nil:
		job.Status = StatusCompleted
		fm := outcome.FinalMethod
		job.FinalMethod = &fm
		job.PartialFields = outcome.PartialFields
		job.DecisionReason = outcome.DecisionReason
		job.ManualReviewReason = outcome.ManualReviewReason
		job.LLMLatencyMS = outcome.LLMLatencyMS
		job.RequiresManualReview = outcome.RequiresManualReview
		job.CompletedAt = &finished
		job.UpdatedAt = finished
		job.LockedBy = nil
	case isPermanent(err):
		msg := err.Error()
		fm := ManualReview
		job.Status = StatusCompleted
		job.FinalMethod = &fm
		job.LastError = &msg
		job.DecisionReason = &msg
		job.ManualReviewReason = &msg
		job.RequiresManualReview = true
		job.CompletedAt = &finished
		job.UpdatedAt = finished
		job.LockedBy = nil
	default:
		// Retryable path: cancellation and unclassified errors land here.
		// Every processing-scoped field is cleared before re-entering pending.
		msg := err.Error()
		backoff := DefaultRetryBackoff
		var retryable *RetryableError
		if errors.As(err, &retryable) && retryable.RetryAfter != nil {
			backoff = *retryable.RetryAfter
		}
		retryAt := finished.Add(backoff)
		job.Status = StatusPending
		job.RetryCount++
		job.NextRetryAt = &retryAt
		job.LastError = &msg
		job.FinalMethod = nil
		job.PartialFields = nil
		job.DecisionReason = nil
		job.ManualReviewReason = nil
		job.LLMLatencyMS = nil
		job.CompletedAt = nil
		job.ProcessingStartedAt = nil
		job.RequiresManualReview = false
		job.UpdatedAt = finished
		job.LockedBy = nil
	}

	q.jobs[idx] = job
	st := job.Status
	return &st
}

func isPermanent(err error) bool {
	var permanent *PermanentError
	return errors.As(err, &permanent)
}

// PendingCopy clones a job and resets every runtime field so it can be
// safely re-enqueued, rebinding the received-at timestamp.
func PendingCopy(job ExtractionJob, receivedAt time.Time) ExtractionJob {
	job.Status = StatusPending
	job.RetryCount = 0
	job.LockedBy = nil
	job.NextRetryAt = nil
	job.LastError = nil
	job.FinalMethod = nil
	job.ProcessingStartedAt = nil
	job.CompletedAt = nil
	job.LLMLatencyMS = nil
	job.ReprocessAfter = nil
	job.EmailReceivedAt = receivedAt
	job.UpdatedAt = time.Now().UTC()
	return job
}
