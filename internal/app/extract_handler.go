package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/extractor"
	"github.com/sponto/ses-match/internal/queue"
)

// NewExtractionHandler builds the queue handler that runs the rule-based
// extractor over the archived email body.
//
// Outcomes: a missing email is permanent (the body will never appear); a
// store error is retryable; otherwise the job completes with the
// extracted payload. Jobs the extractor routes to the LLM path are
// completed with the manual-review flag, since LLM extraction runs in a
// separate worker outside this binary.
func NewExtractionHandler(emails *postgres.EmailRepo) queue.Handler {
	return func(ctx context.Context, job *queue.ExtractionJob) (*queue.Outcome, error) {
		email, err := emails.FetchByMessageID(ctx, job.MessageID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &queue.PermanentError{
				Message: fmt.Sprintf("email body not found for message %s", job.MessageID),
			}
		}
		if err != nil {
			return nil, &queue.RetryableError{Message: err.Error()}
		}

		body := ""
		if email.BodyText != nil {
			body = *email.BodyText
		}
		subject := job.EmailSubject
		if email.Subject != nil {
			subject = *email.Subject
		}

		output := extractor.ExtractAll(body, &subject, nil)

		payload, err := json.Marshal(output.Partial)
		if err != nil {
			return nil, &queue.PermanentError{Message: fmt.Sprintf("marshal partial fields: %v", err)}
		}

		reason := output.Decision.Reason
		outcome := &queue.Outcome{
			FinalMethod:    queue.RustCompleted,
			PartialFields:  payload,
			DecisionReason: &reason,
		}
		if output.Decision.RecommendedMethod == queue.LLMRecommended {
			outcome.RequiresManualReview = true
			outcome.ManualReviewReason = &reason
		}
		return outcome, nil
	}
}
