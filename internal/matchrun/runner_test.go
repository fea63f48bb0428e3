package matchrun

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponto/ses-match/internal/domain"
)

func strp(v string) *string { return &v }
func intp(v int) *int       { return &v }
func i64p(v int64) *int64   { return &v }

type fakeStore struct {
	results      []domain.MatchResultInsert
	interactions []domain.InteractionLogInsert
	nextID       int64
	// keyed by (talent, project, run) to emulate the unique indexes
	resultIDs map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{resultIDs: map[string]int64{}}
}

func (f *fakeStore) InsertMatchResult(_ context.Context, insert *domain.MatchResultInsert) (int64, error) {
	key := fmt.Sprintf("%d/%d/%s", insert.TalentID, insert.ProjectID, *insert.MatchRunID)
	if id, ok := f.resultIDs[key]; ok {
		// Idempotent upsert: same key updates in place.
		for i := range f.results {
			if f.results[i].TalentID == insert.TalentID && f.results[i].ProjectID == insert.ProjectID {
				f.results[i] = *insert
			}
		}
		return id, nil
	}
	f.nextID++
	f.resultIDs[key] = f.nextID
	f.results = append(f.results, *insert)
	return f.nextID, nil
}

func (f *fakeStore) InsertInteractionLog(_ context.Context, insert *domain.InteractionLogInsert) (int64, error) {
	f.interactions = append(f.interactions, *insert)
	return int64(len(f.interactions)), nil
}

func runnerProject() domain.Project {
	return domain.Project{
		ID:                     i64p(10),
		MonthlyTankaMax:        intp(120),
		WorkTodofuken:          strp("東京都"),
		RemoteOnsite:           strp("リモート併用"),
		RequiredSkillsKeywords: []string{"Rust"},
		MinExperienceYears:     intp(3),
		ContractType:           strp("業務委託"),
	}
}

func runnerTalents() []domain.Talent {
	return []domain.Talent{
		{
			ID:                      i64p(1),
			DesiredPriceMin:         intp(80),
			ResidentialTodofuken:    strp("東京都"),
			PossessedSkillsKeywords: []string{"rust"},
			MinExperienceYears:      intp(5),
			PrimaryContractType:     strp("業務委託"),
		},
		{
			ID:                      i64p(2),
			DesiredPriceMin:         intp(90),
			ResidentialTodofuken:    strp("東京都"),
			PossessedSkillsKeywords: []string{"rust"},
			MinExperienceYears:      intp(3),
			PrimaryContractType:     strp("業務委託"),
		},
	}
}

func TestRunnerMatchRunIDIs26CharsAndStable(t *testing.T) {
	runner := NewRunnerFromEnv()
	assert.Len(t, runner.MatchRunID(), 26)
	assert.Equal(t, runner.MatchRunID(), runner.MatchRunID())

	override := runner.WithMatchRunID("01HXYZ0000000000000000TEST")
	assert.Equal(t, "01HXYZ0000000000000000TEST", override.MatchRunID())
}

func TestBuildMatchResultInserts(t *testing.T) {
	runner := NewRunnerFromEnv().
		WithEngineVersion("engine_v1").
		WithConfigVersion("cfg_v1")

	project := runnerProject()
	inserts := runner.BuildMatchResultInserts(&project, runnerTalents())
	require.Len(t, inserts, 2)

	for _, insert := range inserts {
		assert.Equal(t, int64(10), insert.Insert.ProjectID)
		assert.False(t, insert.Insert.IsKnockout)
		require.NotNil(t, insert.Insert.ScoreTotal)
		assert.GreaterOrEqual(t, *insert.Insert.ScoreTotal, 0.0)
		assert.LessOrEqual(t, *insert.Insert.ScoreTotal, 1.0)
		require.NotNil(t, insert.Insert.MatchRunID)
		assert.Equal(t, runner.MatchRunID(), *insert.Insert.MatchRunID)
		assert.Equal(t, "engine_v1", *insert.Insert.EngineVersion)
		assert.Equal(t, "cfg_v1", *insert.Insert.RuleVersion)

		breakdown := insert.Insert.ScoreBreakdown
		require.NotNil(t, breakdown)
		assert.Contains(t, breakdown, "business_total")
		assert.Contains(t, breakdown, "total")
		assert.Equal(t, ScoreVersion, breakdown["score_version"])
	}

	// Ranked descending by total score.
	first := *inserts[0].Insert.ScoreTotal
	second := *inserts[1].Insert.ScoreTotal
	assert.GreaterOrEqual(t, first, second)
}

func TestBuildInsertsSkipTalentsWithoutIDs(t *testing.T) {
	runner := NewRunnerFromEnv()
	project := runnerProject()

	talents := runnerTalents()
	talents[0].ID = nil

	inserts := runner.BuildMatchResultInserts(&project, talents)
	assert.Len(t, inserts, 1)

	logs := runner.BuildInteractionLogs(&project, talents, nil)
	assert.Len(t, logs, 1)
}

func TestBuildInteractionLogsBackfillsMatchResultID(t *testing.T) {
	runner := NewRunnerFromEnv().WithVariant("two_tower_10pct")
	project := runnerProject()

	ids := map[int64]int64{1: 100, 2: 200}
	logs := runner.BuildInteractionLogs(&project, runnerTalents(), ids)
	require.Len(t, logs, 2)

	for _, log := range logs {
		assert.Equal(t, runner.MatchRunID(), log.MatchRunID)
		require.NotNil(t, log.MatchResultID)
		assert.Equal(t, ids[log.TalentID], *log.MatchResultID)
		require.NotNil(t, log.BusinessScore)
		require.NotNil(t, log.Variant)
		assert.Equal(t, "two_tower_10pct", *log.Variant)
		assert.Nil(t, log.Outcome)
		assert.Nil(t, log.FeedbackAt)
	}
}

func TestPersistWritesSnapshotsThenLogs(t *testing.T) {
	runner := NewRunnerFromEnv().WithEngineVersion("engine_v1")
	project := runnerProject()
	store := newFakeStore()

	err := runner.Persist(context.Background(), store, store, &project, runnerTalents())
	require.NoError(t, err)

	require.Len(t, store.results, 2)
	require.Len(t, store.interactions, 2)

	// Every interaction points back at the snapshot written for its talent.
	idByTalent := map[int64]int64{}
	for key, id := range store.resultIDs {
		var talentID, projectID int64
		var runID string
		_, scanErr := fmt.Sscanf(key, "%d/%d/%s", &talentID, &projectID, &runID)
		require.NoError(t, scanErr)
		idByTalent[talentID] = id
	}
	for _, log := range store.interactions {
		require.NotNil(t, log.MatchResultID)
		assert.Equal(t, idByTalent[log.TalentID], *log.MatchResultID)
	}
}

func TestPersistIsIdempotentOnRetry(t *testing.T) {
	runner := NewRunnerFromEnv()
	project := runnerProject()
	store := newFakeStore()

	require.NoError(t, runner.Persist(context.Background(), store, store, &project, runnerTalents()))
	require.NoError(t, runner.Persist(context.Background(), store, store, &project, runnerTalents()))

	// Snapshot rows converge through the unique key.
	assert.Len(t, store.results, 2)
}
