package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sponto/ses-match/internal/domain"
)

func locProject(pref, area, remote *string) domain.Project {
	return domain.Project{WorkTodofuken: pref, WorkArea: area, RemoteOnsite: remote}
}

func locTalent(pref, area *string) domain.Talent {
	return domain.Talent{ResidentialTodofuken: pref, ResidentialArea: area}
}

func TestFullRemotePassesRegardlessOfDistance(t *testing.T) {
	project := locProject(strp("東京都"), nil, strp("フルリモート"))
	talent := locTalent(strp("大阪府"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Equal(t, 1.0, result.Score)
}

func TestSamePrefecture(t *testing.T) {
	project := locProject(strp("東京都"), nil, nil)
	talent := locTalent(strp("東京都"), nil)

	// Remote mode defaults to リモート併用 when absent.
	result := EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Equal(t, 0.95, result.Score)
	assert.Contains(t, result.Details, "リモート併用")
}

func TestAdjacentPrefecture(t *testing.T) {
	project := locProject(strp("東京都"), nil, nil)
	talent := locTalent(strp("神奈川県"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Equal(t, 0.75, result.Score)

	project.RemoteOnsite = strp("フル出社")
	result = EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Equal(t, 0.6, result.Score)
}

func TestOnsiteDistantPrefectureIsHardKo(t *testing.T) {
	project := locProject(strp("東京都"), nil, strp("フル出社"))
	talent := locTalent(strp("大阪府"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsHardKo())
	assert.Equal(t, 0.0, result.Score)
}

func TestDistantPrefectureWithRemoteIsSoftKo(t *testing.T) {
	project := locProject(strp("東京都"), nil, strp("リモート併用"))
	talent := locTalent(strp("大阪府"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsSoftKo())
	assert.Equal(t, 0.2, result.Score)
}

func TestStationLevelDecisionWins(t *testing.T) {
	project := locProject(nil, nil, strp("フル出社"))
	project.WorkStation = strp("新宿駅")
	talent := locTalent(nil, nil)
	talent.NearestStation = strp("新宿")

	result := EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.GreaterOrEqual(t, result.Score, 0.97)

	talent.NearestStation = strp("渋谷")
	result = EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsSoftKo())
	assert.Equal(t, 0.6, result.Score)
}

func TestAreaOnlyFallback(t *testing.T) {
	project := locProject(nil, strp("関東"), nil)
	talent := locTalent(nil, strp("関西"))

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsSoftKo())
	assert.Equal(t, 0.3, result.Score)

	talent = locTalent(nil, strp("関東"))
	result = EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Equal(t, 0.85, result.Score)
}

func TestOnsiteAreaMismatchIsHardKo(t *testing.T) {
	project := locProject(nil, strp("関東"), strp("フル出社"))
	talent := locTalent(nil, strp("関西"))

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsHardKo())
	assert.Equal(t, 0.0, result.Score)
}

func TestCrossLevelDerivation(t *testing.T) {
	// Talent prefecture derives the talent area; project supplies only an area.
	project := locProject(nil, strp("関東"), nil)
	talent := locTalent(strp("東京都"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.Equal(t, Pass, result.KoDecision.Kind)
	assert.Greater(t, result.Score, 0.7)
}

func TestNothingKnownIsNeutralSoftKo(t *testing.T) {
	project := locProject(nil, nil, nil)
	talent := locTalent(nil, nil)

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsSoftKo())
	assert.Contains(t, result.KoDecision.Reason, "location_unknown")
	assert.Equal(t, 0.5, result.Score)
}

func TestAreaConflictEscalatesPassToSoftKo(t *testing.T) {
	// Given area 近畿(→関西) conflicts with the area derived from 東京都.
	project := locProject(strp("東京都"), strp("近畿"), nil)
	talent := locTalent(strp("東京都"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsSoftKo())
	assert.Contains(t, result.Details, "area_conflict")
	assert.LessOrEqual(t, result.Score, 0.6)
}

func TestAreaConflictPreservesHardKo(t *testing.T) {
	project := locProject(strp("東京都"), strp("近畿"), strp("フル出社"))
	talent := locTalent(strp("大阪府"), nil)

	result := EvaluateLocation(&project, &talent)
	assert.True(t, result.KoDecision.IsHardKo())
	assert.Equal(t, 0.0, result.Score)
}
