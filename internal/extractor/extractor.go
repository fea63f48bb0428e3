// Package extractor parses a raw email body and subject into the
// structured PartialFields payload plus a quality report and a routing
// decision. The pipeline is pure: no I/O, no clock.
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sponto/ses-match/internal/domain"
	"github.com/sponto/ses-match/internal/normalize"
	"github.com/sponto/ses-match/internal/queue"
)

// Quality reports Tier1/Tier2 extraction coverage.
// Tier1: tanka min/max, start date, prefecture. Tier2: remote mode, flow.
type Quality struct {
	Tier1Extracted int    `json:"tier1_extracted"`
	Tier1Total     int    `json:"tier1_total"`
	Tier2Extracted int    `json:"tier2_extracted"`
	Tier2Total     int    `json:"tier2_total"`
	LLMRecommended bool   `json:"llm_recommended"`
	Reason         string `json:"reason"`
}

// Decision is the recommended processing route for a job.
type Decision struct {
	RecommendedMethod queue.RecommendedMethod `json:"recommended_method"`
	Reason            string                  `json:"reason"`
}

// Output bundles one email's extraction result.
type Output struct {
	Partial  domain.PartialFields
	Quality  Quality
	Decision Decision
}

var (
	patternsOnce sync.Once

	reRange   *regexp.Regexp
	reMinOnly *regexp.Regexp
	reMaxOnly *regexp.Regexp
	reSingle  *regexp.Regexp

	reAsap      *regexp.Regexp
	reNextMonth *regexp.Regexp
	reMonthPart *regexp.Regexp
	reExactDate *regexp.Regexp
	reMonthOnly *regexp.Regexp

	reFullRemote   *regexp.Regexp
	reHybridRemote *regexp.Regexp
	reOnsite       *regexp.Regexp

	reEndDirect *regexp.Regexp
	reOneHop    *regexp.Regexp
	reTwoHop    *regexp.Regexp
	reThreeHop  *regexp.Regexp
	reFourPlus  *regexp.Regexp
)

func patterns() {
	patternsOnce.Do(func() {
		reRange = regexp.MustCompile(`(\d{1,3})\s*[〜～~-]\s*(\d{1,3})\s*万円`)
		reMinOnly = regexp.MustCompile(`(\d{1,3})\s*万円\s*(?:〜|以上)`)
		reMaxOnly = regexp.MustCompile(`(?:〜|まで)\s*(\d{1,3})\s*万円`)
		reSingle = regexp.MustCompile(`(\d{1,3})\s*万円(?:程度|くらい|前後)?`)

		reAsap = regexp.MustCompile(`(?i)(即日|即時|ASAP)`)
		reNextMonth = regexp.MustCompile(`来月(?:上旬|中旬|下旬)?`)
		reMonthPart = regexp.MustCompile(`\d{1,2}月(?:上旬|中旬|下旬)`)
		reExactDate = regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`)
		reMonthOnly = regexp.MustCompile(`\d{1,2}月`)

		reFullRemote = regexp.MustCompile(`(?i)(フルリモート|完全在宅|常時リモート|full\s*remote)`)
		reHybridRemote = regexp.MustCompile(`(?i)(週\s*[1-4１-４一二三四]\s*リモート|リモート可|リモート併用|ハイブリッド)`)
		reOnsite = regexp.MustCompile(`(?i)(フル出社|常駐|客先|出社のみ|出社必須)`)

		reEndDirect = regexp.MustCompile(`(?i)(エンド直|直請け)`)
		reOneHop = regexp.MustCompile(`(?i)(1次|一次|元請|プライム)`)
		reTwoHop = regexp.MustCompile(`(?i)(2次|二次)`)
		reThreeHop = regexp.MustCompile(`(?i)(3次|三次)`)
		reFourPlus = regexp.MustCompile(`(?i)(4次|四次|4次以上|四次以上)`)
	})
}

// ExtractTanka pulls the monthly price range (10-thousand-yen units).
// Priority: explicit range > min-only (max=min+20, cap 200) > max-only
// (min=max-20, floor 30) > single value (min=max). Values outside 30–200
// are rejected.
func ExtractTanka(body string) (minTanka, maxTanka int, ok bool) {
	patterns()

	parse := func(s string) int {
		n := 0
		for _, r := range s {
			n = n*10 + int(r-'0')
		}
		return n
	}

	if m := reRange.FindStringSubmatch(body); m != nil {
		lo, hi := parse(m[1]), parse(m[2])
		if lo >= 30 && lo <= hi && hi <= 200 {
			return lo, hi, true
		}
	}

	if m := reMinOnly.FindStringSubmatch(body); m != nil {
		lo := parse(m[1])
		if lo >= 30 && lo <= 200 {
			hi := lo + 20
			if hi > 200 {
				hi = 200
			}
			return lo, hi, true
		}
	}

	if m := reMaxOnly.FindStringSubmatch(body); m != nil {
		hi := parse(m[1])
		if hi >= 30 && hi <= 200 {
			lo := 30
			if hi > 20+30 {
				lo = hi - 20
			}
			return lo, hi, true
		}
	}

	if m := reSingle.FindStringSubmatch(body); m != nil {
		v := parse(m[1])
		if v >= 30 && v <= 200 {
			return v, v, true
		}
	}

	return 0, 0, false
}

// ExtractStartDateRaw conservatively pulls the raw start-date phrase.
// The phrase is normalized later against the received-at date.
func ExtractStartDateRaw(body string) string {
	patterns()

	if strings.TrimSpace(body) == "" {
		return ""
	}

	if m := reAsap.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	if m := reNextMonth.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	if m := reMonthPart.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	if m := reExactDate.FindString(body); m != "" {
		raw := strings.TrimSpace(m)
		if _, ok := parseCalendar(raw); ok {
			return raw
		}
		return ""
	}
	if m := reMonthOnly.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

func parseCalendar(raw string) (struct{}, bool) {
	var y, mo, d int
	normalized := strings.ReplaceAll(raw, "/", "-")
	if _, err := fmt.Sscanf(normalized, "%d-%d-%d", &y, &mo, &d); err != nil {
		return struct{}{}, false
	}
	if mo < 1 || mo > 12 || d < 1 || d > daysIn(y, mo) {
		return struct{}{}, false
	}
	return struct{}{}, true
}

func daysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

// ExtractWorkTodofuken finds the longest prefecture mention in the body.
func ExtractWorkTodofuken(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	best := ""
	for _, pref := range prefectureMentions() {
		if strings.Contains(body, pref) && len(pref) > len(best) {
			best = pref
		}
	}
	if best == "" {
		return ""
	}
	return normalize.CorrectTodofuken(best)
}

var (
	mentionsOnce sync.Once
	mentions     []string
)

func prefectureMentions() []string {
	mentionsOnce.Do(func() {
		seen := map[string]struct{}{}
		for _, pref := range []string{
			"北海道", "青森", "岩手", "宮城", "秋田", "山形", "福島", "茨城", "栃木",
			"群馬", "埼玉", "千葉", "東京", "神奈川", "新潟", "富山", "石川", "福井",
			"山梨", "長野", "岐阜", "静岡", "愛知", "三重", "滋賀", "京都", "大阪",
			"兵庫", "奈良", "和歌山", "鳥取", "島根", "岡山", "広島", "山口", "徳島",
			"香川", "愛媛", "高知", "福岡", "佐賀", "長崎", "熊本", "大分", "宮崎",
			"鹿児島", "沖縄",
		} {
			for _, candidate := range []string{pref, normalize.CorrectTodofuken(pref)} {
				if candidate == "" {
					continue
				}
				if _, dup := seen[candidate]; dup {
					continue
				}
				seen[candidate] = struct{}{}
				mentions = append(mentions, candidate)
			}
		}
	})
	return mentions
}

// ExtractRemoteOnsite classifies the remote/onsite mode from keywords.
func ExtractRemoteOnsite(body string) string {
	patterns()

	if reFullRemote.MatchString(body) {
		return "フルリモート"
	}
	if reHybridRemote.MatchString(body) {
		return "リモート併用"
	}
	if reOnsite.MatchString(body) {
		return "フル出社"
	}
	return normalize.CorrectRemoteOnsite(body)
}

// ExtractFlowDept classifies the contracting-chain position from keywords.
func ExtractFlowDept(body string) string {
	patterns()

	switch {
	case reEndDirect.MatchString(body):
		return "エンド直"
	case reOneHop.MatchString(body):
		return "1次請け"
	case reTwoHop.MatchString(body):
		return "2次請け"
	case reThreeHop.MatchString(body):
		return "3次請け"
	case reFourPlus.MatchString(body):
		return "4次請け以上"
	}

	if corrected := normalize.CorrectFlowDept(body); corrected != "不明" {
		return corrected
	}
	return ""
}

// ExtractPartialFields pulls every Tier1/Tier2 field from the body.
func ExtractPartialFields(body string) domain.PartialFields {
	var partial domain.PartialFields

	if lo, hi, ok := ExtractTanka(body); ok {
		partial.MonthlyTankaMin = &lo
		partial.MonthlyTankaMax = &hi
	}

	if raw := ExtractStartDateRaw(body); raw != "" {
		partial.StartDateRaw = &raw
	}
	if pref := ExtractWorkTodofuken(body); pref != "" {
		partial.WorkTodofuken = &pref
	}
	if remote := ExtractRemoteOnsite(body); remote != "" {
		partial.RemoteOnsite = &remote
	}
	if flow := ExtractFlowDept(body); flow != "" {
		partial.FlowDept = &flow
	}

	unknown := "unknown"
	partial.OutcomeTag = &unknown

	return partial
}

// ExtractAll runs the full pipeline over body, subject, and an externally
// supplied skill list (normalized and folded into the partial).
func ExtractAll(body string, subject *string, requiredSkills []string) Output {
	partial := ExtractPartialFields(body)

	if len(requiredSkills) > 0 {
		if normalized := normalize.NormalizeSkillsVec(requiredSkills); len(normalized) > 0 {
			partial.RequiredSkillsKeywords = normalized
		}
	}

	if subject != nil {
		if trimmed := strings.TrimSpace(*subject); trimmed != "" {
			partial.ProjectName = &trimmed
		}
	}

	quality, decision := EvaluateQuality(partial)
	return Output{Partial: partial, Quality: quality, Decision: decision}
}

// CalculateQuality counts Tier1/Tier2 coverage.
func CalculateQuality(partial domain.PartialFields) Quality {
	tier1 := 0
	for _, present := range []bool{
		partial.MonthlyTankaMin != nil,
		partial.MonthlyTankaMax != nil,
		partial.StartDateRaw != nil,
		partial.WorkTodofuken != nil,
	} {
		if present {
			tier1++
		}
	}

	tier2 := 0
	for _, present := range []bool{partial.RemoteOnsite != nil, partial.FlowDept != nil} {
		if present {
			tier2++
		}
	}

	return Quality{Tier1Extracted: tier1, Tier1Total: 4, Tier2Extracted: tier2, Tier2Total: 2}
}

// DecideRecommendedMethod routes on Tier coverage: incomplete Tier1 or an
// empty Tier2 recommends the LLM path.
func DecideRecommendedMethod(quality Quality) Decision {
	if quality.Tier1Extracted < quality.Tier1Total {
		return Decision{
			RecommendedMethod: queue.LLMRecommended,
			Reason: fmt.Sprintf("LLM recommended: Tier1 incomplete %d/%d",
				quality.Tier1Extracted, quality.Tier1Total),
		}
	}
	if quality.Tier2Extracted < 1 {
		return Decision{
			RecommendedMethod: queue.LLMRecommended,
			Reason: fmt.Sprintf("LLM recommended: Tier2 incomplete %d/%d",
				quality.Tier2Extracted, quality.Tier2Total),
		}
	}
	return Decision{
		RecommendedMethod: queue.RustRecommended,
		Reason:            "Rust recommended: Tier1/Tier2 satisfied",
	}
}

// CalculatePriority orders processing by how much is missing; it is
// independent of quality scoring.
func CalculatePriority(quality Quality) int {
	switch {
	case quality.Tier1Extracted < quality.Tier1Total:
		return 100
	case quality.Tier2Extracted == 0:
		return 50
	case quality.Tier2Extracted == 1:
		return 20
	default:
		return 10
	}
}

// EvaluateQuality produces the quality report and the routing decision.
func EvaluateQuality(partial domain.PartialFields) (Quality, Decision) {
	quality := CalculateQuality(partial)
	decision := DecideRecommendedMethod(quality)
	quality.LLMRecommended = decision.RecommendedMethod == queue.LLMRecommended
	quality.Reason = decision.Reason
	return quality, decision
}
