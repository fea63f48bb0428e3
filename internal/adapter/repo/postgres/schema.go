package postgres

import "fmt"

// RunDateTimezone is the canonical timezone used when deriving the
// run_date/event_date generated columns. Every SQL reference interpolates
// this constant; nothing else hard-codes the zone.
const RunDateTimezone = "Asia/Tokyo"

// runDateExpression is the shared generated-column expression.
var runDateExpression = fmt.Sprintf("(created_at AT TIME ZONE '%s')::date", RunDateTimezone)

const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS ses;
`

const extractionQueueDDL = `
CREATE TABLE ses.extraction_queue (
    id SERIAL PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL UNIQUE,
    email_subject TEXT NOT NULL,
    email_received_at TIMESTAMPTZ NOT NULL,
    subject_hash VARCHAR(16) NOT NULL,

    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    priority INTEGER NOT NULL DEFAULT 50,
    locked_by VARCHAR(100),

    retry_count INTEGER NOT NULL DEFAULT 0,
    next_retry_at TIMESTAMPTZ,
    last_error TEXT,

    partial_fields JSONB,
    decision_reason TEXT,

    recommended_method VARCHAR(20),
    final_method VARCHAR(20),

    extractor_version VARCHAR(20),
    rule_version VARCHAR(20),

    manual_review_reason TEXT,
    reprocess_after TIMESTAMPTZ,

    created_at TIMESTAMPTZ DEFAULT clock_timestamp(),
    processing_started_at TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ DEFAULT clock_timestamp(),

    llm_latency_ms INTEGER,

    requires_manual_review BOOLEAN NOT NULL DEFAULT false,
    canary_target BOOLEAN NOT NULL DEFAULT false,

    CONSTRAINT chk_status CHECK (status IN ('pending', 'processing', 'completed')),
    CONSTRAINT chk_recommended_method CHECK (recommended_method IN ('rust_recommended', 'llm_recommended')),
    CONSTRAINT chk_final_method CHECK (final_method IS NULL OR final_method IN ('rust_completed', 'llm_completed', 'manual_review')),
    CONSTRAINT chk_priority CHECK (priority >= 0 AND priority <= 100),
    CONSTRAINT chk_retry_count CHECK (retry_count >= 0 AND retry_count <= 100)
);

CREATE INDEX idx_extraction_queue_status_priority ON ses.extraction_queue(status, priority DESC, next_retry_at);
CREATE INDEX idx_extraction_queue_pending ON ses.extraction_queue(created_at, id) WHERE status = 'pending';
CREATE INDEX idx_extraction_queue_status_created ON ses.extraction_queue(status, created_at, id);
CREATE INDEX idx_extraction_queue_message_id ON ses.extraction_queue(message_id);
CREATE INDEX idx_extraction_queue_subject_hash ON ses.extraction_queue(subject_hash, created_at);
CREATE INDEX idx_extraction_queue_canary ON ses.extraction_queue(canary_target, created_at);
CREATE INDEX idx_extraction_queue_reprocess ON ses.extraction_queue(reprocess_after) WHERE reprocess_after IS NOT NULL;
CREATE INDEX idx_extraction_queue_review_reason ON ses.extraction_queue(manual_review_reason) WHERE manual_review_reason IS NOT NULL;
CREATE INDEX idx_extraction_queue_partial_fields_json ON ses.extraction_queue USING GIN(partial_fields jsonb_path_ops);
`

const emailArchivesDDL = `
CREATE TABLE IF NOT EXISTS ses.anken_emails (
    id BIGSERIAL PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL UNIQUE,
    subject TEXT,
    body_text TEXT,
    received_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_anken_emails_received_at ON ses.anken_emails (received_at DESC);
CREATE INDEX IF NOT EXISTS idx_anken_emails_message_id ON ses.anken_emails (message_id);

CREATE TABLE IF NOT EXISTS ses.jinzai_emails (
    id BIGSERIAL PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL UNIQUE,
    subject TEXT,
    body_text TEXT,
    received_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_jinzai_emails_received_at ON ses.jinzai_emails (received_at DESC);
CREATE INDEX IF NOT EXISTS idx_jinzai_emails_message_id ON ses.jinzai_emails (message_id);
`

const entitySnapshotsDDL = `
CREATE TABLE ses.talents_enum (
    id BIGSERIAL PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL UNIQUE,
    talent_name TEXT,
    summary_text TEXT,
    desired_price_min INTEGER,
    available_date TIMESTAMPTZ,
    received_at TIMESTAMPTZ,
    source_text TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX idx_talents_enum_message_id ON ses.talents_enum(message_id);

CREATE TABLE ses.talents (
    id BIGSERIAL PRIMARY KEY,
    name TEXT,
    sales_status TEXT,
    desired_price INTEGER,
    available_date TIMESTAMPTZ,
    skill_tags JSONB,
    residential_todofuken TEXT,
    residential_area TEXT,
    nearest_station TEXT,
    desired_remote_onsite TEXT,
    min_experience_years INTEGER,
    primary_contract_type TEXT,
    secondary_contract_type TEXT,
    birth_year INTEGER,
    gender TEXT,
    nationality TEXT,
    japanese_skill TEXT,
    english_skill TEXT,
    flow_depth TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX idx_talents_name ON ses.talents(name);
CREATE INDEX idx_talents_sales_status ON ses.talents(sales_status);
CREATE INDEX idx_talents_available ON ses.talents(available_date) WHERE available_date IS NOT NULL;
CREATE INDEX idx_talents_price ON ses.talents(desired_price) WHERE desired_price IS NOT NULL;
CREATE INDEX idx_talents_skills ON ses.talents USING GIN(skill_tags);

CREATE TABLE ses.projects_enum (
    project_code BIGSERIAL PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL UNIQUE,
    project_name TEXT,
    monthly_tanka_min INTEGER,
    monthly_tanka_max INTEGER,
    start_date TIMESTAMPTZ,
    source_text TEXT,
    requires_manual_review BOOLEAN NOT NULL DEFAULT false,
    manual_review_reason TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX idx_projects_enum_message_id ON ses.projects_enum(message_id);
`

var matchResultsDDL = fmt.Sprintf(`
CREATE TABLE ses.match_results (
    id BIGSERIAL PRIMARY KEY,
    talent_id BIGINT NOT NULL,
    project_id BIGINT NOT NULL,

    is_knockout BOOLEAN NOT NULL,
    ko_reasons JSONB,
    needs_manual_review BOOLEAN NOT NULL DEFAULT false,

    score_total DOUBLE PRECISION,
    score_breakdown JSONB,
    CONSTRAINT chk_score_total_range CHECK (score_total IS NULL OR (score_total >= 0.0 AND score_total <= 1.0)),

    engine_version VARCHAR(20),
    rule_version VARCHAR(20),

    last_match_run_id VARCHAR(64) NOT NULL,

    is_deleted BOOLEAN NOT NULL DEFAULT false,
    deleted_at TIMESTAMPTZ,
    deleted_by TEXT,

    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),

    run_date DATE GENERATED ALWAYS AS (
        %s
    ) STORED
);

CREATE UNIQUE INDEX uniq_match_results_active
    ON ses.match_results(talent_id, project_id, run_date, last_match_run_id)
    WHERE deleted_at IS NULL;

CREATE INDEX idx_match_results_talent_run_date ON ses.match_results(talent_id, run_date DESC)
  WHERE deleted_at IS NULL;
CREATE INDEX idx_match_results_project_run_date ON ses.match_results(project_id, run_date DESC)
  WHERE deleted_at IS NULL;
CREATE INDEX idx_match_results_project_score_created
  ON ses.match_results(project_id, score_total DESC, created_at DESC)
  WHERE deleted_at IS NULL;
CREATE INDEX idx_match_results_score ON ses.match_results(score_total DESC)
  WHERE NOT is_knockout AND deleted_at IS NULL;
CREATE INDEX idx_match_results_match_run ON ses.match_results(last_match_run_id)
  WHERE deleted_at IS NULL;
CREATE INDEX idx_match_results_score_breakdown_json
  ON ses.match_results USING GIN(score_breakdown jsonb_path_ops)
  WHERE score_breakdown IS NOT NULL AND deleted_at IS NULL;
`, runDateExpression)

var interactionLogsDDL = fmt.Sprintf(`
CREATE TABLE ses.interaction_logs (
    id BIGSERIAL PRIMARY KEY,

    match_result_id BIGINT REFERENCES ses.match_results(id) ON DELETE SET NULL,
    talent_id BIGINT NOT NULL,
    project_id BIGINT NOT NULL,
    match_run_id VARCHAR(64) NOT NULL,
    engine_version VARCHAR(20),
    config_version VARCHAR(20),

    two_tower_score DOUBLE PRECISION,
    two_tower_embedder VARCHAR(50),
    two_tower_version VARCHAR(20),

    business_score DOUBLE PRECISION,

    outcome VARCHAR(20),
    feedback_at TIMESTAMPTZ,

    variant VARCHAR(50),

    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),

    run_date DATE GENERATED ALWAYS AS (
        %s
    ) STORED,

    CONSTRAINT interaction_logs_unique_run_pair UNIQUE (match_run_id, talent_id, project_id)
);

CREATE INDEX idx_interaction_logs_match_run ON ses.interaction_logs(match_run_id, created_at DESC);
CREATE INDEX idx_interaction_logs_match_result ON ses.interaction_logs(match_result_id);
CREATE INDEX idx_interaction_logs_talent_run_date ON ses.interaction_logs(talent_id, run_date DESC, created_at DESC);
CREATE INDEX idx_interaction_logs_project_run_date ON ses.interaction_logs(project_id, run_date DESC, created_at DESC);
CREATE INDEX idx_interaction_logs_outcome ON ses.interaction_logs(outcome, created_at DESC)
    WHERE outcome IS NOT NULL;
`, runDateExpression)

var feedbackEventsDDL = fmt.Sprintf(`
CREATE TABLE ses.feedback_events (
    id BIGSERIAL,

    interaction_id BIGINT REFERENCES ses.interaction_logs(id) ON DELETE CASCADE,
    match_result_id BIGINT REFERENCES ses.match_results(id) ON DELETE CASCADE,
    match_run_id VARCHAR(64),
    engine_version VARCHAR(20),
    config_version VARCHAR(20),
    project_id BIGINT NOT NULL,
    talent_id BIGINT NOT NULL,

    feedback_type TEXT NOT NULL,
    CONSTRAINT chk_feedback_type CHECK (feedback_type IN (
        'thumbs_up', 'thumbs_down', 'review_ok', 'review_ng', 'review_pending',
        'accepted', 'rejected', 'interview_scheduled', 'no_response'
    )),

    ng_reason_category TEXT,
    CONSTRAINT chk_ng_reason_category CHECK (
        ng_reason_category IS NULL OR ng_reason_category IN (
            'tanka', 'skill', 'availability', 'location', 'flow', 'other'
        )
    ),

    comment TEXT,
    feedback_tags JSONB,

    is_revoked BOOLEAN NOT NULL DEFAULT false,
    revoked_at TIMESTAMPTZ,
    revoked_by TEXT,

    actor TEXT NOT NULL,
    source TEXT NOT NULL,

    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),

    event_date DATE GENERATED ALWAYS AS (
        %s
    ) STORED,

    CONSTRAINT uniq_feedback_events_actor_type UNIQUE (interaction_id, feedback_type, actor, event_date)
)
PARTITION BY RANGE (event_date);

CREATE TABLE IF NOT EXISTS ses.feedback_events_default PARTITION OF ses.feedback_events DEFAULT;

CREATE INDEX idx_feedback_events_interaction ON ses.feedback_events(interaction_id);
CREATE INDEX idx_feedback_events_match_result ON ses.feedback_events(match_result_id);
CREATE INDEX idx_feedback_events_match_run ON ses.feedback_events(match_run_id);
CREATE INDEX idx_feedback_events_project_talent ON ses.feedback_events(project_id, talent_id);
CREATE INDEX idx_feedback_events_type_created_at ON ses.feedback_events(feedback_type, created_at DESC);
CREATE INDEX idx_feedback_events_actor_created_at ON ses.feedback_events(actor, created_at DESC);
CREATE INDEX idx_feedback_events_not_revoked ON ses.feedback_events(interaction_id, created_at DESC)
    WHERE NOT is_revoked;
`, runDateExpression)

const interactionEventsDDL = `
CREATE TABLE ses.interaction_events (
    id BIGSERIAL PRIMARY KEY,
    interaction_id BIGINT NOT NULL REFERENCES ses.interaction_logs(id) ON DELETE CASCADE,

    event_type TEXT NOT NULL,
    CONSTRAINT chk_interaction_event_type CHECK (event_type IN (
        'viewed_candidate_detail',
        'copied_template',
        'clicked_contact',
        'shortlisted'
    )),

    actor TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'gui',

    idempotency_key TEXT NOT NULL UNIQUE,

    meta JSONB,

    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE UNIQUE INDEX uniq_interaction_shortlist_once
    ON ses.interaction_events(interaction_id, actor)
    WHERE event_type = 'shortlisted';

CREATE INDEX idx_interaction_events_interaction ON ses.interaction_events(interaction_id, created_at DESC);
CREATE INDEX idx_interaction_events_actor ON ses.interaction_events(actor, created_at DESC);
CREATE INDEX idx_interaction_events_type ON ses.interaction_events(event_type, created_at DESC);
`

const conversionEventsDDL = `
CREATE TABLE ses.conversion_events (
    id BIGSERIAL PRIMARY KEY,

    interaction_id BIGINT REFERENCES ses.interaction_logs(id) ON DELETE CASCADE,
    talent_id BIGINT NOT NULL,
    project_id BIGINT NOT NULL,

    stage TEXT NOT NULL,
    CONSTRAINT chk_conversion_stage CHECK (stage IN (
        'contacted',
        'entry',
        'interview_scheduled',
        'offer',
        'contract_signed',
        'lost'
    )),

    actor TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'gui',

    meta JSONB,

    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX idx_conversion_events_interaction ON ses.conversion_events(interaction_id, created_at DESC);
CREATE INDEX idx_conversion_events_talent_project ON ses.conversion_events(talent_id, project_id, created_at DESC);
CREATE INDEX idx_conversion_events_stage ON ses.conversion_events(stage, created_at DESC);
`
