package postgres

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/pkg/textx"
)

// DefaultDetailStatementTimeoutMS bounds the job-detail transaction.
const DefaultDetailStatementTimeoutMS = 5000

// querier covers both the pool and an open transaction.
type querier interface {
	Query(ctx domain.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx domain.Context, sql string, args ...any) pgx.Row
}

// GetJobByID loads the plain detail projection (no includes).
func (r *QueueRepo) GetJobByID(ctx domain.Context, id int64) (*QueueJobDetail, error) {
	detail, err := r.GetJobDetailWithIncludes(ctx, id, JobDetailIncludes{Limit: 1, Days: 30}, false, DefaultDetailStatementTimeoutMS)
	if err != nil || detail == nil {
		return nil, err
	}
	return &detail.QueueJobDetail, nil
}

// GetJobDetailWithIncludes reads the queue row and the requested include
// sections within one transaction, optionally bounded by a statement
// timeout. A statement-timeout abort surfaces as domain.ErrUnavailable.
// Returns (nil, nil) when the job does not exist.
func (r *QueueRepo) GetJobDetailWithIncludes(
	ctx domain.Context,
	id int64,
	includes JobDetailIncludes,
	allowSourceText bool,
	statementTimeoutMS int,
) (*QueueJobDetailResponse, error) {
	tracer := otel.Tracer("repo.queue")
	ctx, span := tracer.Start(ctx, "queue.GetJobDetailWithIncludes")
	defer span.End()

	// events need interactions (for interaction ids); interactions and
	// feedback both hang off the match rows.
	if includes.IncludeEvents {
		includes.IncludeInteractions = true
	}
	if includes.IncludeInteractions || includes.IncludeFeedback {
		includes.IncludeMatches = true
	}

	includes.Limit = clampI64(includes.Limit, 1, 200)
	includes.Days = clampI32(includes.Days, 1, 365)

	if statementTimeoutMS <= 0 {
		detail, err := r.jobDetail(ctx, r.Pool, id, includes, allowSourceText)
		return detail, mapTimeout(err)
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", statementTimeoutMS)); err != nil {
		return nil, fmt.Errorf("op=queue.detail.timeout: %w", err)
	}

	detail, err := r.jobDetail(ctx, tx, id, includes, allowSourceText)
	if err != nil {
		return nil, mapTimeout(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("op=queue.detail.commit: %w", err)
	}
	return detail, nil
}

func clampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mapTimeout converts a Postgres query_canceled abort (statement timeout)
// into the service-unavailable sentinel.
func mapTimeout(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57014" {
		return fmt.Errorf("op=queue.detail: statement timeout: %w", domain.ErrUnavailable)
	}
	return err
}

func (r *QueueRepo) jobDetail(
	ctx domain.Context,
	q querier,
	id int64,
	includes JobDetailIncludes,
	allowSourceText bool,
) (*QueueJobDetailResponse, error) {
	row := q.QueryRow(ctx, `SELECT id, message_id, status, priority, retry_count,
        next_retry_at, final_method, requires_manual_review, manual_review_reason,
        decision_reason, created_at, updated_at, partial_fields, last_error,
        llm_latency_ms, processing_started_at, completed_at
    FROM ses.extraction_queue WHERE id = $1`, id)

	var detail QueueJobDetailResponse
	err := row.Scan(
		&detail.Job.ID, &detail.Job.MessageID, &detail.Job.Status, &detail.Job.Priority,
		&detail.Job.RetryCount, &detail.Job.NextRetryAt, &detail.Job.FinalMethod,
		&detail.Job.RequiresManualReview, &detail.Job.ManualReviewReason,
		&detail.Job.DecisionReason, &detail.Job.CreatedAt, &detail.Job.UpdatedAt,
		&detail.PartialFields, &detail.LastError, &detail.LLMLatencyMS,
		&detail.ProcessingStartedAt, &detail.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.job: %w", err)
	}

	includeSource := includes.IncludeSourceText && allowSourceText
	needSnapshots := includes.IncludeEntity || includes.IncludeMatches || includes.IncludeSourceText

	var talent *TalentSnapshot
	var project *ProjectSnapshot
	if needSnapshots {
		if talent, err = fetchTalentSnapshot(ctx, q, detail.Job.MessageID, includeSource); err != nil {
			return nil, err
		}
		if project, err = fetchProjectSnapshot(ctx, q, detail.Job.MessageID, includeSource); err != nil {
			return nil, err
		}
	}

	if includes.IncludeEntity && (talent != nil || project != nil) {
		detail.Entity = &JobEntity{Talent: talent, Project: project}
	}

	if includeSource {
		var source *string
		if talent != nil && talent.SourceText != nil {
			source = talent.SourceText
		} else if project != nil && project.SourceText != nil {
			source = project.SourceText
		}
		if source != nil {
			preview := textx.TruncateSourcePreview(*source)
			detail.SourcePreview = &preview
		}
	}

	if includes.IncludeMatches {
		pairs, err := r.buildPairs(ctx, q, talent, project, includes)
		if err != nil {
			return nil, err
		}
		detail.Pairs = pairs
	}

	return &detail, nil
}

func fetchTalentSnapshot(ctx domain.Context, q querier, messageID string, includeSource bool) (*TalentSnapshot, error) {
	row := q.QueryRow(ctx, `SELECT id, message_id, talent_name, summary_text,
        desired_price_min, available_date, received_at, source_text
    FROM ses.talents_enum WHERE message_id = $1 LIMIT 1`, messageID)

	var s TalentSnapshot
	var source *string
	err := row.Scan(&s.ID, &s.MessageID, &s.TalentName, &s.SummaryText,
		&s.DesiredPriceMin, &s.AvailableDate, &s.ReceivedAt, &source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.talent_snapshot: %w", err)
	}
	if includeSource {
		s.SourceText = source
	}
	return &s, nil
}

func fetchProjectSnapshot(ctx domain.Context, q querier, messageID string, includeSource bool) (*ProjectSnapshot, error) {
	row := q.QueryRow(ctx, `SELECT project_code, message_id, project_name,
        monthly_tanka_min, monthly_tanka_max, start_date, source_text,
        requires_manual_review, manual_review_reason
    FROM ses.projects_enum WHERE message_id = $1 LIMIT 1`, messageID)

	var s ProjectSnapshot
	var source *string
	err := row.Scan(&s.ProjectCode, &s.MessageID, &s.ProjectName,
		&s.MonthlyTankaMin, &s.MonthlyTankaMax, &s.StartDate, &source,
		&s.RequiresManualReview, &s.ManualReviewReason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.project_snapshot: %w", err)
	}
	if includeSource {
		s.SourceText = source
	}
	return &s, nil
}

func (r *QueueRepo) buildPairs(
	ctx domain.Context,
	q querier,
	talent *TalentSnapshot,
	project *ProjectSnapshot,
	includes JobDetailIncludes,
) ([]PairDetail, error) {
	var talentID, projectID *int64
	if talent != nil {
		talentID = &talent.ID
	}
	if project != nil {
		projectID = &project.ProjectCode
	}

	matches, err := fetchMatchResults(ctx, q, talentID, projectID, includes.Days, includes.Limit)
	if err != nil {
		return nil, err
	}

	matchIDs := make([]int64, len(matches))
	for i, m := range matches {
		matchIDs[i] = m.ID
	}

	interactionByMatch := map[int64]InteractionLogRow{}
	if includes.IncludeInteractions || includes.IncludeFeedback {
		interactions, err := fetchLatestInteractions(ctx, q, matchIDs)
		if err != nil {
			return nil, err
		}
		for _, it := range interactions {
			if it.MatchResultID != nil {
				interactionByMatch[*it.MatchResultID] = it
			}
		}
	}

	interactionIDs := make([]int64, 0, len(interactionByMatch))
	for _, it := range interactionByMatch {
		interactionIDs = append(interactionIDs, it.ID)
	}

	feedbackByInteraction := map[int64][]FeedbackEventRow{}
	feedbackByMatch := map[int64][]FeedbackEventRow{}
	if includes.IncludeFeedback {
		limit := includes.Limit * 5
		if limit > 200 {
			limit = 200
		}
		events, err := fetchFeedbackEvents(ctx, q, interactionIDs, matchIDs, limit)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			if e.InteractionID != nil {
				feedbackByInteraction[*e.InteractionID] = append(feedbackByInteraction[*e.InteractionID], e)
			}
			if e.MatchResultID != nil {
				feedbackByMatch[*e.MatchResultID] = append(feedbackByMatch[*e.MatchResultID], e)
			}
		}
	}

	eventsByInteraction := map[int64][]InteractionEventRow{}
	if includes.IncludeEvents {
		limit := includes.Limit * 10
		if limit > 200 {
			limit = 200
		}
		events, err := fetchInteractionEvents(ctx, q, interactionIDs, limit)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			eventsByInteraction[e.InteractionID] = append(eventsByInteraction[e.InteractionID], e)
		}
	}

	pairs := make([]PairDetail, 0, len(matches))
	for _, match := range matches {
		pair := PairDetail{MatchResult: match, FeedbackEvents: []FeedbackEventRow{}, InteractionEvents: []InteractionEventRow{}}

		if it, ok := interactionByMatch[match.ID]; ok {
			latest := it
			pair.LatestInteraction = &latest
			pair.InteractionEvents = eventsByInteraction[it.ID]
			if pair.InteractionEvents == nil {
				pair.InteractionEvents = []InteractionEventRow{}
			}
		}

		seen := map[int64]struct{}{}
		if pair.LatestInteraction != nil {
			for _, e := range feedbackByInteraction[pair.LatestInteraction.ID] {
				if _, dup := seen[e.ID]; !dup {
					seen[e.ID] = struct{}{}
					pair.FeedbackEvents = append(pair.FeedbackEvents, e)
				}
			}
		}
		for _, e := range feedbackByMatch[match.ID] {
			if _, dup := seen[e.ID]; !dup {
				seen[e.ID] = struct{}{}
				pair.FeedbackEvents = append(pair.FeedbackEvents, e)
			}
		}

		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func fetchMatchResults(ctx domain.Context, q querier, talentID, projectID *int64, days int32, limit int64) ([]MatchResultRow, error) {
	if talentID == nil && projectID == nil {
		return nil, nil
	}

	// run_date filtering leverages the composite (talent_id, run_date)
	// and (project_id, run_date) indexes.
	query := fmt.Sprintf(`SELECT id, talent_id, project_id, is_knockout, ko_reasons,
        needs_manual_review, score_total, score_breakdown, engine_version,
        rule_version, created_at
    FROM ses.match_results
    WHERE deleted_at IS NULL
      AND run_date >= (NOW() AT TIME ZONE '%s')::date - $3::int
      AND ( ($1::bigint IS NOT NULL AND talent_id = $1)
         OR ($2::bigint IS NOT NULL AND project_id = $2) )
    ORDER BY run_date DESC, created_at DESC
    LIMIT $4`, RunDateTimezone)

	rows, err := q.Query(ctx, query, talentID, projectID, days, limit)
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.match_results: %w", err)
	}
	defer rows.Close()

	var results []MatchResultRow
	seen := map[int64]struct{}{}
	for rows.Next() {
		var m MatchResultRow
		if err := rows.Scan(&m.ID, &m.TalentID, &m.ProjectID, &m.IsKnockout, &m.KoReasons,
			&m.NeedsManualReview, &m.ScoreTotal, &m.ScoreBreakdown, &m.EngineVersion,
			&m.RuleVersion, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=queue.detail.match_results_scan: %w", err)
		}
		if _, dup := seen[m.ID]; !dup {
			seen[m.ID] = struct{}{}
			results = append(results, m)
		}
	}
	return results, rows.Err()
}

func fetchLatestInteractions(ctx domain.Context, q querier, matchResultIDs []int64) ([]InteractionLogRow, error) {
	if len(matchResultIDs) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `SELECT DISTINCT ON (match_result_id) id, match_result_id,
        talent_id, project_id, match_run_id, engine_version, config_version,
        two_tower_score, two_tower_embedder, two_tower_version, business_score,
        outcome, feedback_at, variant, created_at
    FROM ses.interaction_logs
    WHERE match_result_id = ANY($1::bigint[])
    ORDER BY match_result_id, created_at DESC`, matchResultIDs)
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.interactions: %w", err)
	}
	defer rows.Close()

	var out []InteractionLogRow
	for rows.Next() {
		var it InteractionLogRow
		if err := rows.Scan(&it.ID, &it.MatchResultID, &it.TalentID, &it.ProjectID,
			&it.MatchRunID, &it.EngineVersion, &it.ConfigVersion, &it.TwoTowerScore,
			&it.TwoTowerEmbedder, &it.TwoTowerVersion, &it.BusinessScore,
			&it.Outcome, &it.FeedbackAt, &it.Variant, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=queue.detail.interactions_scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func fetchFeedbackEvents(ctx domain.Context, q querier, interactionIDs, matchResultIDs []int64, limit int64) ([]FeedbackEventRow, error) {
	if len(interactionIDs) == 0 && len(matchResultIDs) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `SELECT id, interaction_id, match_result_id, match_run_id,
        engine_version, config_version, project_id, talent_id, feedback_type,
        ng_reason_category, comment, actor, source, is_revoked, created_at
    FROM ses.feedback_events
    WHERE (interaction_id IS NOT NULL AND interaction_id = ANY($1::bigint[]))
       OR (match_result_id IS NOT NULL AND match_result_id = ANY($2::bigint[]))
    ORDER BY created_at DESC
    LIMIT $3`, interactionIDs, matchResultIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.feedback: %w", err)
	}
	defer rows.Close()

	var events []FeedbackEventRow
	for rows.Next() {
		e, err := scanFeedbackRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seen := map[int64]struct{}{}
	deduped := events[:0]
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		deduped = append(deduped, e)
	}
	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].CreatedAt.After(deduped[j].CreatedAt) })
	if int64(len(deduped)) > limit {
		deduped = deduped[:limit]
	}
	return deduped, nil
}

func scanFeedbackRow(rows pgx.Rows) (FeedbackEventRow, error) {
	var e FeedbackEventRow
	err := rows.Scan(&e.ID, &e.InteractionID, &e.MatchResultID, &e.MatchRunID,
		&e.EngineVersion, &e.ConfigVersion, &e.ProjectID, &e.TalentID, &e.FeedbackType,
		&e.NgReasonCategory, &e.Comment, &e.Actor, &e.Source, &e.IsRevoked, &e.CreatedAt)
	if err != nil {
		return FeedbackEventRow{}, fmt.Errorf("op=queue.detail.feedback_scan: %w", err)
	}
	return e, nil
}

func fetchInteractionEvents(ctx domain.Context, q querier, interactionIDs []int64, limit int64) ([]InteractionEventRow, error) {
	if len(interactionIDs) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `SELECT id, interaction_id, event_type, actor, source, meta, created_at
    FROM ses.interaction_events
    WHERE interaction_id = ANY($1::bigint[])
    ORDER BY created_at DESC
    LIMIT $2`, interactionIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("op=queue.detail.events: %w", err)
	}
	defer rows.Close()

	var events []InteractionEventRow
	for rows.Next() {
		var e InteractionEventRow
		if err := rows.Scan(&e.ID, &e.InteractionID, &e.EventType, &e.Actor, &e.Source, &e.Meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=queue.detail.events_scan: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
