package domain

import (
	"context"
	"time"
)

// Context is a type alias to stdlib context.Context for convenience across layers.
type Context = context.Context

// Project carries the matching inputs extracted from a project (案件) email.
// Identity is optional: rows that never reached projects_enum have ID == nil.
type Project struct {
	ID                     *int64
	ProjectName            *string
	RequiredSkillsKeywords []string
	PreferredSkillsKeywords []string
	MonthlyTankaMin        *int
	MonthlyTankaMax        *int
	WorkTodofuken          *string
	WorkArea               *string
	WorkStation            *string
	RemoteOnsite           *string
	MinExperienceYears     *int
	ContractType           *string
	AgeLimitLower          *int
	AgeLimitUpper          *int
	ForeignerAllowed       *bool
	IsKojinOK              *bool
	JapaneseSkill          *string
	EnglishSkill           *string
	FlowDept               *string
	ProjectKeywords        []string
}

// Talent carries the matching inputs extracted from a talent (人材) email.
type Talent struct {
	ID                      *int64
	TalentName              *string
	PossessedSkillsKeywords []string
	DesiredPriceMin         *int
	ResidentialTodofuken    *string
	ResidentialArea         *string
	NearestStation          *string
	DesiredRemoteOnsite     *string
	MinExperienceYears      *int
	PrimaryContractType     *string
	SecondaryContractType   *string
	BirthYear               *int
	Gender                  *string
	Nationality             *string
	JapaneseSkill           *string
	EnglishSkill            *string
	FlowDepth               *string
	NGKeywords              []string
}

// PartialFields is the structured payload the extractor pulls from one email.
// Tier1: tanka min/max, start_date_raw, work_todofuken.
// Tier2: remote_onsite, flow_dept.
type PartialFields struct {
	MonthlyTankaMin        *int     `json:"monthly_tanka_min,omitempty"`
	MonthlyTankaMax        *int     `json:"monthly_tanka_max,omitempty"`
	StartDateRaw           *string  `json:"start_date_raw,omitempty"`
	WorkTodofuken          *string  `json:"work_todofuken,omitempty"`
	RemoteOnsite           *string  `json:"remote_onsite,omitempty"`
	FlowDept               *string  `json:"flow_dept,omitempty"`
	RequiredSkillsKeywords []string `json:"required_skills_keywords,omitempty"`
	ProjectName            *string  `json:"project_name,omitempty"`
	OutcomeTag             *string  `json:"outcome_tag,omitempty"`
	DeclineReasonTag       *string  `json:"decline_reason_tag,omitempty"`
}

// MatchResultInsert is one snapshot row for ses.match_results.
type MatchResultInsert struct {
	TalentID          int64
	ProjectID         int64
	IsKnockout        bool
	KoReasons         []string
	NeedsManualReview bool
	ScoreTotal        *float64
	ScoreBreakdown    map[string]any
	EngineVersion     *string
	RuleVersion       *string
	MatchRunID        *string
	CreatedAt         *time.Time
}

// InteractionLogInsert is one row for ses.interaction_logs.
type InteractionLogInsert struct {
	MatchResultID   *int64
	TalentID        int64
	ProjectID       int64
	MatchRunID      string
	EngineVersion   *string
	ConfigVersion   *string
	TwoTowerScore   *float64
	TwoTowerEmbedder *string
	TwoTowerVersion *string
	BusinessScore   *float64
	Outcome         *string
	FeedbackAt      *time.Time
	Variant         *string
	CreatedAt       *time.Time
}
