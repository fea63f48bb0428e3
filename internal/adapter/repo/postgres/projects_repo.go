package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// ProjectRepo assembles matching-ready projects from projects_enum plus
// the structured payload its extraction job produced.
type ProjectRepo struct{ Pool PgxPool }

// NewProjectRepo constructs a ProjectRepo with the given pool.
func NewProjectRepo(p PgxPool) *ProjectRepo { return &ProjectRepo{Pool: p} }

// GetForMatching loads a project snapshot and enriches it with the
// partial_fields of its completed extraction job (skills, location,
// remote mode, flow) keyed by the shared message_id.
func (r *ProjectRepo) GetForMatching(ctx domain.Context, projectCode int64) (*domain.Project, error) {
	tracer := otel.Tracer("repo.projects")
	ctx, span := tracer.Start(ctx, "projects.GetForMatching")
	defer span.End()

	row := r.Pool.QueryRow(ctx, `SELECT p.project_code, p.project_name,
        p.monthly_tanka_min, p.monthly_tanka_max, q.partial_fields
    FROM ses.projects_enum p
    LEFT JOIN ses.extraction_queue q ON q.message_id = p.message_id
    WHERE p.project_code = $1`, projectCode)

	var project domain.Project
	var id int64
	var partial []byte
	err := row.Scan(&id, &project.ProjectName, &project.MonthlyTankaMin, &project.MonthlyTankaMax, &partial)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("op=projects.get: project %d: %w", projectCode, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("op=projects.get: %w", err)
	}
	project.ID = &id

	if len(partial) > 0 {
		var fields domain.PartialFields
		if err := json.Unmarshal(partial, &fields); err != nil {
			return nil, fmt.Errorf("op=projects.get_partial: %w", err)
		}
		project.RequiredSkillsKeywords = fields.RequiredSkillsKeywords
		project.WorkTodofuken = fields.WorkTodofuken
		project.RemoteOnsite = fields.RemoteOnsite
		project.FlowDept = fields.FlowDept
		if project.MonthlyTankaMin == nil {
			project.MonthlyTankaMin = fields.MonthlyTankaMin
		}
		if project.MonthlyTankaMax == nil {
			project.MonthlyTankaMax = fields.MonthlyTankaMax
		}
	}

	return &project, nil
}
