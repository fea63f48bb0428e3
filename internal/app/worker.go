package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/observability"
	"github.com/sponto/ses-match/internal/queue"
)

// Worker drains the durable extraction queue: lock_next, run the handler,
// apply the outcome. Peers coordinate purely through the store's
// row-level locks, so any number of workers can run concurrently.
type Worker struct {
	repo         *postgres.QueueRepo
	handler      queue.Handler
	workerID     string
	pollInterval time.Duration
}

// NewWorker builds a worker around the durable queue.
func NewWorker(repo *postgres.QueueRepo, handler queue.Handler, workerID string, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{repo: repo, handler: handler, workerID: workerID, pollInterval: pollInterval}
}

// Run loops until the context is cancelled. An empty queue backs off
// exponentially up to the poll interval; store errors back off the same
// way so a flapping database is not hammered.
func (w *Worker) Run(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = w.pollInterval
	policy.MaxElapsedTime = 0

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopping", slog.String("worker_id", w.workerID))
			return
		default:
		}

		processed, err := w.ProcessOne(ctx)
		switch {
		case err != nil:
			slog.Error("worker iteration failed", slog.String("worker_id", w.workerID), slog.Any("error", err))
			sleepCtx(ctx, policy.NextBackOff())
		case !processed:
			sleepCtx(ctx, policy.NextBackOff())
		default:
			policy.Reset()
		}
	}
}

// ProcessOne locks and processes at most one job. Returns false when the
// queue had nothing eligible.
//
// The handler runs after the pending → processing transition is durably
// visible, so peers can observe (and recover) the row. A panicking
// handler is captured and treated as a retryable failure; cancellation is
// retryable too. Either way the row never stays in processing.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	now := time.Now().UTC()
	job, err := w.repo.LockNext(ctx, w.workerID, now)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	started := time.Now()
	outcome, handlerErr := w.runHandler(ctx, job)
	finished := time.Now().UTC()
	if observability.JobProcessingSeconds != nil {
		observability.JobProcessingSeconds.Observe(time.Since(started).Seconds())
	}

	switch {
	case handlerErr == nil:
		err = w.repo.Complete(ctx, job.ID, outcome, finished)
		countJob("completed")
	case isPermanentErr(handlerErr):
		err = w.repo.FailPermanent(ctx, job.ID, handlerErr.Error(), finished)
		countJob("manual_review")
	default:
		retryAfter := queue.DefaultRetryBackoff
		var retryable *queue.RetryableError
		if errors.As(handlerErr, &retryable) && retryable.RetryAfter != nil {
			retryAfter = *retryable.RetryAfter
		}
		err = w.repo.FailRetryable(ctx, job.ID, handlerErr.Error(), finished.Add(retryAfter), finished)
		countJob("retried")
	}
	if err != nil {
		return true, fmt.Errorf("op=worker.apply_outcome message_id=%s: %w", job.MessageID, err)
	}
	return true, nil
}

// runHandler shields the worker from handler panics.
func (w *Worker) runHandler(ctx context.Context, job *queue.ExtractionJob) (outcome *queue.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			observability.CapturePanic("ses-match-worker", rec)
			outcome = nil
			err = &queue.RetryableError{Message: fmt.Sprintf("handler panic: %v", rec)}
		}
	}()

	outcome, err = w.handler(ctx, job)
	if err == nil && ctx.Err() != nil {
		// A cancelled handler is equivalent to a retryable failure.
		return nil, &queue.RetryableError{Message: ctx.Err().Error()}
	}
	return outcome, err
}

func isPermanentErr(err error) bool {
	var permanent *queue.PermanentError
	return errors.As(err, &permanent)
}

func countJob(status string) {
	if observability.JobsProcessed != nil {
		observability.JobsProcessed.WithLabelValues(status).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
