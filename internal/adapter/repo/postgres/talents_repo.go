package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/sponto/ses-match/internal/domain"
)

// TalentRepo reads candidate talents for matching.
type TalentRepo struct{ Pool PgxPool }

// NewTalentRepo constructs a TalentRepo with the given pool.
func NewTalentRepo(p PgxPool) *TalentRepo { return &TalentRepo{Pool: p} }

const talentColumns = `id, name, skill_tags, desired_price,
    residential_todofuken, residential_area, nearest_station,
    desired_remote_onsite, min_experience_years, primary_contract_type,
    secondary_contract_type, birth_year, gender, nationality,
    japanese_skill, english_skill, flow_depth`

func scanTalent(rows pgx.Rows) (domain.Talent, error) {
	var t domain.Talent
	var skillTags []string
	err := rows.Scan(&t.ID, &t.TalentName, &skillTags, &t.DesiredPriceMin,
		&t.ResidentialTodofuken, &t.ResidentialArea, &t.NearestStation,
		&t.DesiredRemoteOnsite, &t.MinExperienceYears, &t.PrimaryContractType,
		&t.SecondaryContractType, &t.BirthYear, &t.Gender, &t.Nationality,
		&t.JapaneseSkill, &t.EnglishSkill, &t.FlowDepth)
	if err != nil {
		return domain.Talent{}, err
	}
	t.PossessedSkillsKeywords = skillTags
	return t, nil
}

// ListByIDs loads the given talents; unknown ids are silently skipped.
func (r *TalentRepo) ListByIDs(ctx domain.Context, ids []int64) ([]domain.Talent, error) {
	tracer := otel.Tracer("repo.talents")
	ctx, span := tracer.Start(ctx, "talents.ListByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+talentColumns+`
    FROM ses.talents WHERE id = ANY($1::bigint[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("op=talents.list_by_ids: %w", err)
	}
	defer rows.Close()

	var talents []domain.Talent
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("op=talents.list_by_ids_scan: %w", err)
		}
		talents = append(talents, t)
	}
	return talents, rows.Err()
}

// ListActive loads up to limit talents, most recently updated first.
func (r *TalentRepo) ListActive(ctx domain.Context, limit int64) ([]domain.Talent, error) {
	tracer := otel.Tracer("repo.talents")
	ctx, span := tracer.Start(ctx, "talents.ListActive")
	defer span.End()

	if limit <= 0 || limit > 2000 {
		limit = 500
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+talentColumns+`
    FROM ses.talents ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("op=talents.list_active: %w", err)
	}
	defer rows.Close()

	var talents []domain.Talent
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("op=talents.list_active_scan: %w", err)
		}
		talents = append(talents, t)
	}
	return talents, rows.Err()
}
