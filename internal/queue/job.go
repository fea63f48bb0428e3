// Package queue models the extraction queue: the ExtractionJob row, its
// three-state lifecycle, and an in-memory state machine that the durable
// Postgres mirror follows.
package queue

import (
	"encoding/json"
	"time"
)

// Status captures the lifecycle state of an extraction job.
// Only three states exist; a failed handler either re-enters pending
// (retryable) or terminates as completed with final_method=manual_review.
type Status string

// Queue status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// RecommendedMethod is the extractor's routing recommendation.
type RecommendedMethod string

// Recommended method values.
const (
	RustRecommended RecommendedMethod = "rust_recommended"
	LLMRecommended  RecommendedMethod = "llm_recommended"
)

// FinalMethod records which path actually completed the job.
type FinalMethod string

// Final method values.
const (
	RustCompleted FinalMethod = "rust_completed"
	LLMCompleted  FinalMethod = "llm_completed"
	ManualReview  FinalMethod = "manual_review"
)

// ExtractionJob mirrors one ses.extraction_queue row.
//
// Invariants:
//   - status=processing implies locked_by and processing_started_at are set.
//   - status=completed implies final_method is set.
//   - message_id is globally unique; upserts on it are idempotent.
type ExtractionJob struct {
	ID                   int64
	MessageID            string
	EmailSubject         string
	EmailReceivedAt      time.Time
	SubjectHash          string
	Status               Status
	Priority             int
	LockedBy             *string
	RetryCount           int
	NextRetryAt          *time.Time
	LastError            *string
	PartialFields        json.RawMessage
	DecisionReason       *string
	RecommendedMethod    *RecommendedMethod
	FinalMethod          *FinalMethod
	ExtractorVersion     *string
	RuleVersion          *string
	CreatedAt            time.Time
	ProcessingStartedAt  *time.Time
	CompletedAt          *time.Time
	UpdatedAt            time.Time
	LLMLatencyMS         *int
	RequiresManualReview bool
	ManualReviewReason   *string
	ReprocessAfter       *time.Time
	CanaryTarget         bool
}

// NewJob builds a pending job with the default priority.
func NewJob(messageID, emailSubject string, receivedAt time.Time, subjectHash string) ExtractionJob {
	now := time.Now().UTC()
	return ExtractionJob{
		MessageID:       messageID,
		EmailSubject:    emailSubject,
		EmailReceivedAt: receivedAt,
		SubjectHash:     subjectHash,
		Status:          StatusPending,
		Priority:        50,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Outcome is what a handler returns when a job completes normally
// (including the completed-with-manual-review path).
type Outcome struct {
	FinalMethod          FinalMethod
	PartialFields        json.RawMessage
	DecisionReason       *string
	LLMLatencyMS         *int
	RequiresManualReview bool
	ManualReviewReason   *string
}

// RetryableError sends the job back to pending with a backoff.
// A nil RetryAfter uses the 5-minute default.
type RetryableError struct {
	Message    string
	RetryAfter *time.Duration
}

func (e *RetryableError) Error() string { return e.Message }

// PermanentError terminates the job as completed/manual_review.
type PermanentError struct {
	Message string
}

func (e *PermanentError) Error() string { return e.Message }

// DefaultRetryBackoff is applied when a retryable failure carries no override.
const DefaultRetryBackoff = 5 * time.Minute
