package postgres

import (
	"encoding/json"
	"time"
)

// QueueJobFilter constrains list_jobs. Every field appends one
// parameterized "AND column OP $n" fragment.
type QueueJobFilter struct {
	Status               *string
	RequiresManualReview *bool
	CanaryTarget         *bool
	FinalMethod          *string
	ManualReviewReason   *string
	CreatedAfter         *time.Time
	CreatedBefore        *time.Time
}

// Pagination bounds a listing. Limit+1 rows are fetched to derive HasMore.
type Pagination struct {
	Limit  int64
	Offset int64
}

// QueueJobListItem is the list-view projection of a queue row.
type QueueJobListItem struct {
	ID                   int64      `json:"id"`
	MessageID            string     `json:"message_id"`
	Status               string     `json:"status"`
	Priority             int        `json:"priority"`
	RetryCount           int        `json:"retry_count"`
	NextRetryAt          *time.Time `json:"next_retry_at,omitempty"`
	FinalMethod          *string    `json:"final_method,omitempty"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	ManualReviewReason   *string    `json:"manual_review_reason,omitempty"`
	DecisionReason       *string    `json:"decision_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// QueueJobListResponse is one page plus the has-more marker.
type QueueJobListResponse struct {
	Items   []QueueJobListItem `json:"items"`
	Limit   int64              `json:"limit"`
	Offset  int64              `json:"offset"`
	HasMore bool               `json:"has_more"`
}

// JobDetailIncludes selects the optional sections of get-job-detail.
type JobDetailIncludes struct {
	IncludeEntity       bool
	IncludeMatches      bool
	IncludeInteractions bool
	IncludeFeedback     bool
	IncludeEvents       bool
	IncludeSourceText   bool
	Limit               int64
	Days                int32
}

// TalentSnapshot is the talents_enum row bound to a queue message.
type TalentSnapshot struct {
	ID              int64      `json:"id"`
	MessageID       string     `json:"message_id"`
	TalentName      *string    `json:"talent_name,omitempty"`
	SummaryText     *string    `json:"summary_text,omitempty"`
	DesiredPriceMin *int       `json:"desired_price_min,omitempty"`
	AvailableDate   *time.Time `json:"available_date,omitempty"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`
	SourceText      *string    `json:"source_text,omitempty"`
}

// ProjectSnapshot is the projects_enum row bound to a queue message.
type ProjectSnapshot struct {
	ProjectCode          int64      `json:"project_code"`
	MessageID            string     `json:"message_id"`
	ProjectName          *string    `json:"project_name,omitempty"`
	MonthlyTankaMin      *int       `json:"monthly_tanka_min,omitempty"`
	MonthlyTankaMax      *int       `json:"monthly_tanka_max,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	SourceText           *string    `json:"source_text,omitempty"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	ManualReviewReason   *string    `json:"manual_review_reason,omitempty"`
}

// JobEntity bundles whichever snapshots exist for the message.
type JobEntity struct {
	Talent  *TalentSnapshot  `json:"talent,omitempty"`
	Project *ProjectSnapshot `json:"project,omitempty"`
}

// MatchResultRow is the read model of one match_results row.
type MatchResultRow struct {
	ID                int64           `json:"id"`
	TalentID          int64           `json:"talent_id"`
	ProjectID         int64           `json:"project_id"`
	IsKnockout        bool            `json:"is_knockout"`
	KoReasons         []string        `json:"ko_reasons"`
	NeedsManualReview bool            `json:"needs_manual_review"`
	ScoreTotal        *float64        `json:"score_total,omitempty"`
	ScoreBreakdown    json.RawMessage `json:"score_breakdown,omitempty"`
	EngineVersion     *string         `json:"engine_version,omitempty"`
	RuleVersion       *string         `json:"rule_version,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// InteractionLogRow is the read model of one interaction_logs row.
type InteractionLogRow struct {
	ID               int64      `json:"id"`
	MatchResultID    *int64     `json:"match_result_id,omitempty"`
	TalentID         int64      `json:"talent_id"`
	ProjectID        int64      `json:"project_id"`
	MatchRunID       string     `json:"match_run_id"`
	EngineVersion    *string    `json:"engine_version,omitempty"`
	ConfigVersion    *string    `json:"config_version,omitempty"`
	TwoTowerScore    *float64   `json:"two_tower_score,omitempty"`
	TwoTowerEmbedder *string    `json:"two_tower_embedder,omitempty"`
	TwoTowerVersion  *string    `json:"two_tower_version,omitempty"`
	BusinessScore    *float64   `json:"business_score,omitempty"`
	Outcome          *string    `json:"outcome,omitempty"`
	FeedbackAt       *time.Time `json:"feedback_at,omitempty"`
	Variant          *string    `json:"variant,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// FeedbackEventRow is the read model of one feedback_events row.
type FeedbackEventRow struct {
	ID               int64     `json:"id"`
	InteractionID    *int64    `json:"interaction_id,omitempty"`
	MatchResultID    *int64    `json:"match_result_id,omitempty"`
	MatchRunID       *string   `json:"match_run_id,omitempty"`
	EngineVersion    *string   `json:"engine_version,omitempty"`
	ConfigVersion    *string   `json:"config_version,omitempty"`
	ProjectID        int64     `json:"project_id"`
	TalentID         int64     `json:"talent_id"`
	FeedbackType     string    `json:"feedback_type"`
	NgReasonCategory *string   `json:"ng_reason_category,omitempty"`
	Comment          *string   `json:"comment,omitempty"`
	Actor            string    `json:"actor"`
	Source           string    `json:"source"`
	IsRevoked        bool      `json:"is_revoked"`
	CreatedAt        time.Time `json:"created_at"`
}

// InteractionEventRow is the read model of one interaction_events row.
type InteractionEventRow struct {
	ID            int64           `json:"id"`
	InteractionID int64           `json:"interaction_id"`
	EventType     string          `json:"event_type"`
	Actor         string          `json:"actor"`
	Source        string          `json:"source"`
	Meta          json.RawMessage `json:"meta,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PairDetail groups one match row with its latest interaction and the
// feedback and GUI events that reference either.
type PairDetail struct {
	MatchResult       MatchResultRow        `json:"match_result"`
	LatestInteraction *InteractionLogRow    `json:"latest_interaction,omitempty"`
	FeedbackEvents    []FeedbackEventRow    `json:"feedback_events"`
	InteractionEvents []InteractionEventRow `json:"interaction_events"`
}

// QueueJobDetail is the detail projection of one queue row.
type QueueJobDetail struct {
	Job                 QueueJobListItem `json:"job"`
	PartialFields       json.RawMessage  `json:"partial_fields,omitempty"`
	LastError           *string          `json:"last_error,omitempty"`
	LLMLatencyMS        *int             `json:"llm_latency_ms,omitempty"`
	ProcessingStartedAt *time.Time       `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
}

// QueueJobDetailResponse is the detail plus the requested includes.
type QueueJobDetailResponse struct {
	QueueJobDetail
	Entity        *JobEntity   `json:"entity,omitempty"`
	Pairs         []PairDetail `json:"pairs,omitempty"`
	SourcePreview *string      `json:"source_preview,omitempty"`
}

// StatusCounts aggregates the queue by status.
type StatusCounts struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
}

// QueueDashboard is the single-query queue overview.
type QueueDashboard struct {
	StatusCounts         StatusCounts `json:"status_counts"`
	ManualReviewCount    int64        `json:"manual_review_count"`
	ErrorCount           int64        `json:"error_count"`
	StaleProcessingCount int64        `json:"stale_processing_count"`
	UpdatedAt            time.Time    `json:"updated_at"`
}
