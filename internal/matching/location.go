package matching

import (
	"fmt"
	"strings"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/normalize"
)

// LocationEvaluation is the verdict of the single authoritative location
// evaluator. KO checks, the pre-filter, and scoring all consume this.
type LocationEvaluation struct {
	KoDecision KoDecision
	Score      float64
	Details    string
}

type normalizedLocation struct {
	projectPref    string
	projectArea    string
	projectStation string
	remoteMode     string
	talentPref     string
	talentArea     string
	talentStation  string
	conflicts      []string
}

func normalizeForMatching(project *domain.Project, talent *domain.Talent) normalizedLocation {
	var n normalizedLocation

	n.projectPref = correctOpt(project.WorkTodofuken, normalize.CorrectTodofuken)
	givenArea := correctOpt(project.WorkArea, normalize.CorrectWorkArea)
	derivedArea := ""
	if n.projectPref != "" {
		derivedArea = normalize.AreaForTodofuken(n.projectPref)
	}
	n.projectArea = reconcileArea(givenArea, derivedArea, "project_area_conflict", &n.conflicts)

	n.remoteMode = normalize.NormalizeRemoteOnsite(deref(project.RemoteOnsite))
	if corrected := normalize.CorrectRemoteOnsite(n.remoteMode); corrected != "" {
		n.remoteMode = corrected
	}
	n.projectStation = correctOpt(project.WorkStation, normalize.NormalizeStation)

	n.talentPref = correctOpt(talent.ResidentialTodofuken, normalize.CorrectTodofuken)
	givenArea = correctOpt(talent.ResidentialArea, normalize.CorrectWorkArea)
	derivedArea = ""
	if n.talentPref != "" {
		derivedArea = normalize.AreaForTodofuken(n.talentPref)
	}
	n.talentArea = reconcileArea(givenArea, derivedArea, "talent_area_conflict", &n.conflicts)
	n.talentStation = correctOpt(talent.NearestStation, normalize.NormalizeStation)

	return n
}

func correctOpt(value *string, f func(string) string) string {
	if value == nil {
		return ""
	}
	return f(*value)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// reconcileArea prefers the area derived from the prefecture; a
// disagreement with the supplied area is recorded as a conflict note.
func reconcileArea(given, derived, conflictTag string, conflicts *[]string) string {
	switch {
	case given != "" && derived != "" && given != derived:
		*conflicts = append(*conflicts, fmt.Sprintf("%s: given=%s vs derived=%s", conflictTag, given, derived))
		return derived
	case derived != "":
		return derived
	default:
		return given
	}
}

// EvaluateLocation is the only place that decides the location dimension.
//
// Decision tree: full remote passes outright; matching stations win; then
// prefectures (same / adjacent / distant); then areas; with nothing at all,
// a neutral SoftKo. Conflict notes escalate Pass to SoftKo and cap the
// score at 0.6.
func EvaluateLocation(project *domain.Project, talent *domain.Talent) LocationEvaluation {
	n := normalizeForMatching(project, talent)
	remote := n.remoteMode

	if remote == "フルリモート" {
		return LocationEvaluation{
			KoDecision: KoDecision{Kind: Pass},
			Score:      1.0,
			Details:    "フルリモート案件 - 勤務地制約なし",
		}
	}

	if n.projectStation != "" && n.talentStation != "" {
		if n.projectStation == n.talentStation {
			score := 1.0
			if remote == "リモート併用" {
				score = 0.97
			}
			return applyConflictNotes(LocationEvaluation{
				KoDecision: KoDecision{Kind: Pass},
				Score:      score,
				Details:    fmt.Sprintf("最寄駅一致: %s (remote_onsite=%s)", n.projectStation, remote),
			}, n.conflicts)
		}
		return applyConflictNotes(LocationEvaluation{
			KoDecision: KoDecision{
				Kind:   SoftKo,
				Reason: fmt.Sprintf("station_mismatch: project=%s vs talent=%s", n.projectStation, n.talentStation),
			},
			Score:   0.6,
			Details: fmt.Sprintf("最寄駅不一致: project=%s vs talent=%s (remote_onsite=%s)", n.projectStation, n.talentStation, remote),
		}, n.conflicts)
	}

	if n.projectPref != "" && n.talentPref != "" {
		return applyConflictNotes(evaluateByTodofuken(n.projectPref, n.talentPref, remote), n.conflicts)
	}

	if n.projectArea != "" && n.talentArea != "" {
		return applyConflictNotes(evaluateByArea(n.projectArea, n.talentArea, remote), n.conflicts)
	}

	return applyConflictNotes(LocationEvaluation{
		KoDecision: KoDecision{Kind: SoftKo, Reason: "location_unknown: 勤務地情報不足のため要手動確認"},
		Score:      0.5,
		Details:    fmt.Sprintf("勤務地情報なし - 手動確認必要 (remote_onsite=%s)", remote),
	}, n.conflicts)
}

func applyConflictNotes(evaluation LocationEvaluation, conflicts []string) LocationEvaluation {
	if len(conflicts) == 0 {
		return evaluation
	}

	note := "area_conflict: " + strings.Join(conflicts, "; ")
	evaluation.Details = evaluation.Details + " | " + note

	switch evaluation.KoDecision.Kind {
	case Pass:
		evaluation.KoDecision = KoDecision{Kind: SoftKo, Reason: note}
		if evaluation.Score > 0.6 {
			evaluation.Score = 0.6
		}
	case SoftKo:
		if !strings.Contains(evaluation.KoDecision.Reason, note) {
			evaluation.KoDecision.Reason += "; " + note
		}
	case HardKo:
	}
	return evaluation
}

func evaluateByTodofuken(projectPref, talentPref, remote string) LocationEvaluation {
	if projectPref == talentPref {
		score := 1.0
		if remote == "リモート併用" {
			score = 0.95
		}
		return LocationEvaluation{
			KoDecision: KoDecision{Kind: Pass},
			Score:      score,
			Details:    fmt.Sprintf("都道府県一致: %s (remote_onsite=%s)", projectPref, remote),
		}
	}

	if isAdjacentPrefecture(projectPref, talentPref) {
		score := 0.7
		switch remote {
		case "フル出社":
			score = 0.6
		case "リモート併用":
			score = 0.75
		}
		return LocationEvaluation{
			KoDecision: KoDecision{Kind: Pass},
			Score:      score,
			Details:    fmt.Sprintf("隣接都道府県: %s ↔ %s (remote_onsite=%s)", talentPref, projectPref, remote),
		}
	}

	if remote == "フル出社" {
		return LocationEvaluation{
			KoDecision: KoDecision{
				Kind:   HardKo,
				Reason: fmt.Sprintf("location_mismatch: %s → %s はフル出社案件で通勤困難", talentPref, projectPref),
			},
			Score:   0.0,
			Details: fmt.Sprintf("都道府県不一致: %s ≠ %s (remote_onsite=%s)", talentPref, projectPref, remote),
		}
	}
	return LocationEvaluation{
		KoDecision: KoDecision{
			Kind:   SoftKo,
			Reason: fmt.Sprintf("location_distant: %s → %s は通勤困難の可能性", talentPref, projectPref),
		},
		Score:   0.2,
		Details: fmt.Sprintf("都道府県不一致: %s ≠ %s (remote_onsite=%s)", talentPref, projectPref, remote),
	}
}

func evaluateByArea(projectArea, talentArea, remote string) LocationEvaluation {
	if projectArea == talentArea {
		score := 0.8
		if remote == "リモート併用" {
			score = 0.85
		}
		return LocationEvaluation{
			KoDecision: KoDecision{Kind: Pass},
			Score:      score,
			Details:    fmt.Sprintf("エリア一致: %s (remote_onsite=%s)", projectArea, remote),
		}
	}

	if remote == "フル出社" {
		return LocationEvaluation{
			KoDecision: KoDecision{
				Kind:   HardKo,
				Reason: fmt.Sprintf("area_mismatch: %s ≠ %s (フル出社案件)", talentArea, projectArea),
			},
			Score:   0.0,
			Details: fmt.Sprintf("エリア不一致: %s ≠ %s (remote_onsite=%s)", talentArea, projectArea, remote),
		}
	}
	return LocationEvaluation{
		KoDecision: KoDecision{
			Kind:   SoftKo,
			Reason: fmt.Sprintf("area_mismatch: %s ≠ %s", talentArea, projectArea),
		},
		Score:   0.3,
		Details: fmt.Sprintf("エリア不一致: %s ≠ %s (remote_onsite=%s)", talentArea, projectArea, remote),
	}
}

// adjacentPairs lists commuting-range prefecture pairs.
var adjacentPairs = [][2]string{
	{"東京都", "神奈川県"},
	{"東京都", "埼玉県"},
	{"東京都", "千葉県"},
	{"神奈川県", "埼玉県"},
	{"神奈川県", "千葉県"},
	{"大阪府", "京都府"},
	{"大阪府", "兵庫県"},
	{"大阪府", "奈良県"},
	{"愛知県", "岐阜県"},
	{"愛知県", "三重県"},
}

func isAdjacentPrefecture(a, b string) bool {
	for _, pair := range adjacentPairs {
		if (a == pair[0] && b == pair[1]) || (a == pair[1] && b == pair[0]) {
			return true
		}
	}
	return false
}
