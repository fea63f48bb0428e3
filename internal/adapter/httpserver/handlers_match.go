package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/matching"
	"github.com/sponto/ses-match/internal/matchrun"
	"github.com/sponto/ses-match/internal/observability"
)

// EngineVersion tags every persisted snapshot from this binary.
const EngineVersion = "go-v1"

// projectPayload is the wire model of a matching project.
type projectPayload struct {
	ID                      *int64   `json:"id,omitempty"`
	ProjectName             *string  `json:"project_name,omitempty"`
	RequiredSkillsKeywords  []string `json:"required_skills_keywords,omitempty"`
	PreferredSkillsKeywords []string `json:"preferred_skills_keywords,omitempty"`
	MonthlyTankaMin         *int     `json:"monthly_tanka_min,omitempty"`
	MonthlyTankaMax         *int     `json:"monthly_tanka_max,omitempty"`
	WorkTodofuken           *string  `json:"work_todofuken,omitempty"`
	WorkArea                *string  `json:"work_area,omitempty"`
	WorkStation             *string  `json:"work_station,omitempty"`
	RemoteOnsite            *string  `json:"remote_onsite,omitempty"`
	MinExperienceYears      *int     `json:"min_experience_years,omitempty"`
	ContractType            *string  `json:"contract_type,omitempty"`
	AgeLimitLower           *int     `json:"age_limit_lower,omitempty"`
	AgeLimitUpper           *int     `json:"age_limit_upper,omitempty"`
	ForeignerAllowed        *bool    `json:"foreigner_allowed,omitempty"`
	IsKojinOK               *bool    `json:"is_kojin_ok,omitempty"`
	JapaneseSkill           *string  `json:"japanese_skill,omitempty"`
	EnglishSkill            *string  `json:"english_skill,omitempty"`
	FlowDept                *string  `json:"flow_dept,omitempty"`
}

func (p projectPayload) toDomain() domain.Project {
	return domain.Project{
		ID:                      p.ID,
		ProjectName:             p.ProjectName,
		RequiredSkillsKeywords:  p.RequiredSkillsKeywords,
		PreferredSkillsKeywords: p.PreferredSkillsKeywords,
		MonthlyTankaMin:         p.MonthlyTankaMin,
		MonthlyTankaMax:         p.MonthlyTankaMax,
		WorkTodofuken:           p.WorkTodofuken,
		WorkArea:                p.WorkArea,
		WorkStation:             p.WorkStation,
		RemoteOnsite:            p.RemoteOnsite,
		MinExperienceYears:      p.MinExperienceYears,
		ContractType:            p.ContractType,
		AgeLimitLower:           p.AgeLimitLower,
		AgeLimitUpper:           p.AgeLimitUpper,
		ForeignerAllowed:        p.ForeignerAllowed,
		IsKojinOK:               p.IsKojinOK,
		JapaneseSkill:           p.JapaneseSkill,
		EnglishSkill:            p.EnglishSkill,
		FlowDept:                p.FlowDept,
	}
}

type matchRequest struct {
	Project       projectPayload `json:"project"`
	TalentIDs     []int64        `json:"talent_ids,omitempty"`
	IncludeSoftKo bool           `json:"include_softko"`
	Limit         *int           `json:"limit,omitempty"`
}

type koDecisionDTO struct {
	KoType string  `json:"ko_type"`
	Reason *string `json:"reason,omitempty"`
}

type scoreBreakdownDTO struct {
	Tanka         float64 `json:"tanka"`
	Location      float64 `json:"location"`
	Skills        float64 `json:"skills"`
	Experience    float64 `json:"experience"`
	Contract      float64 `json:"contract"`
	BusinessTotal float64 `json:"business_total"`
}

type matchResponse struct {
	TalentID             int64                    `json:"talent_id"`
	ProjectID            int64                    `json:"project_id"`
	MatchRunID           string                   `json:"match_run_id"`
	AutoMatchEligible    bool                     `json:"auto_match_eligible"`
	ManualReviewRequired bool                     `json:"manual_review_required"`
	Score                float64                  `json:"score"`
	ScoreBreakdown       scoreBreakdownDTO        `json:"score_breakdown"`
	TwoTowerScore        *float64                 `json:"two_tower_score,omitempty"`
	KoDecisions          map[string]koDecisionDTO `json:"ko_decisions"`
	KoReasons            []string                 `json:"ko_reasons"`
	EngineVersion        string                   `json:"engine_version"`
	RuleVersion          string                   `json:"rule_version"`
	MatchedAt            time.Time                `json:"matched_at"`
}

func koDTOFromDecision(d matching.KoDecision) koDecisionDTO {
	dto := koDecisionDTO{KoType: "pass"}
	switch d.Kind {
	case matching.HardKo:
		dto.KoType = "hard_ko"
	case matching.SoftKo:
		dto.KoType = "soft_ko"
	}
	if d.Reason != "" {
		reason := d.Reason
		dto.Reason = &reason
	}
	return dto
}

func (s *Server) matchConfig() matching.MatchConfig {
	cfg := matching.MatchConfig{
		AutoMatchThreshold: s.Cfg.AutoMatchThreshold,
		ManualReviewMargin: s.Cfg.ManualReviewMargin,
	}
	if s.Cfg.MatchRuleVersion != "" {
		v := s.Cfg.MatchRuleVersion
		cfg.RuleVersion = &v
	}
	return cfg
}

// MatchHandler serves POST /match: rank the project's candidates, persist
// the run, and return the ranked responses.
func (s *Server) MatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("invalid request body: %w", domain.ErrInvalidArgument))
			return
		}

		project := req.Project.toDomain()

		var talents []domain.Talent
		var err error
		if len(req.TalentIDs) > 0 {
			talents, err = s.Talents.ListByIDs(r.Context(), req.TalentIDs)
		} else {
			talents, err = s.Talents.ListActive(r.Context(), 500)
		}
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
			return
		}

		runner := matchrun.NewRunnerFromEnv().WithEngineVersion(EngineVersion)
		if s.Cfg.MatchRuleVersion != "" {
			runner = runner.WithConfigVersion(s.Cfg.MatchRuleVersion)
		}

		if observability.MatchRuns != nil {
			observability.MatchRuns.Inc()
		}

		ranked := runner.RankTalents(&project, talents)
		if observability.MatchCandidates != nil {
			observability.MatchCandidates.Observe(float64(len(ranked)))
		}

		if project.ID != nil {
			if err := runner.Persist(r.Context(), s.MatchResults, s.Interactions, &project, talents); err != nil {
				writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
				return
			}
		}

		matchCfg := s.matchConfig()
		now := time.Now().UTC()
		responses := make([]matchResponse, 0, len(ranked))
		for _, m := range ranked {
			verdict := matching.NewMatchVerdict(m.Ko, m.TotalScore, matchCfg)
			if !req.IncludeSoftKo && m.Ko.NeedsManualReview {
				continue
			}

			var talentID, projectID int64
			if m.Talent.ID != nil {
				talentID = *m.Talent.ID
			}
			if m.Project.ID != nil {
				projectID = *m.Project.ID
			}

			koDecisions := make(map[string]koDecisionDTO, len(m.Ko.Decisions))
			for _, d := range m.Ko.Decisions {
				koDecisions[d.Name] = koDTOFromDecision(d.Decision)
			}

			ruleVersion := "unknown"
			if matchCfg.RuleVersion != nil {
				ruleVersion = *matchCfg.RuleVersion
			}

			responses = append(responses, matchResponse{
				TalentID:             talentID,
				ProjectID:            projectID,
				MatchRunID:           runner.MatchRunID(),
				AutoMatchEligible:    verdict.AutoMatchEligible,
				ManualReviewRequired: verdict.ManualReviewRequired,
				Score:                verdict.Score,
				ScoreBreakdown: scoreBreakdownDTO{
					Tanka:         m.DetailedScore.Tanka.Score,
					Location:      m.DetailedScore.Location.Score,
					Skills:        m.DetailedScore.Skills.Score,
					Experience:    m.DetailedScore.Experience.Score,
					Contract:      m.DetailedScore.Contract.Score,
					BusinessTotal: m.DetailedScore.Total,
				},
				TwoTowerScore: m.TwoTowerScore,
				KoDecisions:   koDecisions,
				KoReasons:     verdict.KoReasons,
				EngineVersion: EngineVersion,
				RuleVersion:   ruleVersion,
				MatchedAt:     now,
			})

			if req.Limit != nil && len(responses) >= *req.Limit {
				break
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"match_run_id": runner.MatchRunID(),
			"matches":      responses,
		})
	}
}

// GetMatchHandler serves GET /matches/{id}.
func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid match id: %w", domain.ErrInvalidArgument))
			return
		}

		row, err := s.MatchResults.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

// ProjectCandidatesHandler serves GET /projects/{id}/candidates.
func (s *Server) ProjectCandidatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid project id: %w", domain.ErrInvalidArgument))
			return
		}

		limit := int64(50)
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				limit = n
			}
		}

		rows, err := s.MatchResults.ListCandidatesForProject(r.Context(), id, limit)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrDatabase, err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"project_id": id, "candidates": rows})
	}
}
