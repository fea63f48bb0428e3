package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DatePrecision classifies how exact a normalized start date is.
type DatePrecision string

// Date precision values (serialized snake_case).
const (
	PrecisionExactDay   DatePrecision = "exact"
	PrecisionMonth      DatePrecision = "month"
	PrecisionAsap       DatePrecision = "asap"
	PrecisionQuarter    DatePrecision = "quarter"
	PrecisionNegotiable DatePrecision = "negotiable"
	PrecisionUnknown    DatePrecision = "unknown"
)

// StartDate is a normalized start date. Date is zero when the precision
// carries no calendar day (negotiable, unknown).
type StartDate struct {
	Date      time.Time
	HasDate   bool
	Precision DatePrecision
	Note      string
}

var (
	startDateOnce sync.Once
	reExactDate   *regexp.Regexp
	reMonthPart   *regexp.Regexp
	reMonthOnly   *regexp.Regexp
	reNextMonth   *regexp.Regexp
	reAsap        *regexp.Regexp
	reQuarter     *regexp.Regexp
	reNegotiable  *regexp.Regexp
)

func startDatePatterns() {
	startDateOnce.Do(func() {
		reExactDate = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
		reMonthPart = regexp.MustCompile(`(\d{1,2})月(上旬|中旬|下旬)`)
		reMonthOnly = regexp.MustCompile(`(\d{1,2})月`)
		reNextMonth = regexp.MustCompile(`来月`)
		reAsap = regexp.MustCompile(`(?i)(即日|即時|ASAP)`)
		reQuarter = regexp.MustCompile(`(?i)(?:(\d{4})\s*[-/]?\s*)?(?:q([1-4])|([1-4])q|第\s*([1-4])\s*四半期)`)
		reNegotiable = regexp.MustCompile(`(?i)(応相談|要相談|調整(?:可|可能)|negotiable)`)
	})
}

// NormalizeStartDate interprets a raw start-date string against the
// received-at base date. Returns ok=false for empty input.
//
// Supported forms: 即日/即時/ASAP, YYYY/MM/DD, 来月, N月上旬|中旬|下旬
// (days 5/15/25), N月 alone, quarter forms (2025Q2 / Q3 / 第3四半期), and
// 応相談-style negotiable markers. A quarter form without a year takes the
// base year and says so in Note; month forms without a year roll into the
// next year when the month is already past, and set no note.
func NormalizeStartDate(raw string, baseReceivedAt time.Time) (StartDate, bool) {
	startDatePatterns()

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StartDate{}, false
	}

	base := baseReceivedAt.UTC()
	baseYear, baseMonth, _ := base.Date()

	if reAsap.MatchString(trimmed) {
		return StartDate{
			Date:      time.Date(baseYear, baseMonth, base.Day(), 0, 0, 0, 0, time.UTC),
			HasDate:   true,
			Precision: PrecisionAsap,
		}, true
	}

	if m := reExactDate.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if date, ok := calendarDate(year, month, day); ok {
			return StartDate{Date: date, HasDate: true, Precision: PrecisionExactDay}, true
		}
		return StartDate{Precision: PrecisionUnknown, Note: "could not normalize start date"}, true
	}

	if reNextMonth.MatchString(trimmed) {
		year, month := int(baseYear), int(baseMonth)
		month++
		if month > 12 {
			month = 1
			year++
		}
		return StartDate{
			Date:      time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			HasDate:   true,
			Precision: PrecisionMonth,
		}, true
	}

	if m := reQuarter.FindStringSubmatch(trimmed); m != nil {
		year := baseYear
		assumedYear := true
		if m[1] != "" {
			year, _ = strconv.Atoi(m[1])
			assumedYear = false
		}

		quarterStr := m[2]
		if quarterStr == "" {
			quarterStr = m[3]
		}
		if quarterStr == "" {
			quarterStr = m[4]
		}
		quarter, _ := strconv.Atoi(quarterStr)
		month := []int{1, 4, 7, 10}[quarter-1]

		note := ""
		if assumedYear {
			note = fmt.Sprintf("year assumed from received_at %s", base.Format("2006-01-02"))
		}
		return StartDate{
			Date:      time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			HasDate:   true,
			Precision: PrecisionQuarter,
			Note:      note,
		}, true
	}

	if m := reMonthPart.FindStringSubmatch(trimmed); m != nil {
		month, _ := strconv.Atoi(m[1])
		day := map[string]int{"上旬": 5, "中旬": 15, "下旬": 25}[m[2]]
		year := baseYear
		if month < int(baseMonth) {
			year++
		}
		if date, ok := calendarDate(year, month, day); ok {
			return StartDate{Date: date, HasDate: true, Precision: PrecisionMonth}, true
		}
	}

	if m := reMonthOnly.FindStringSubmatch(trimmed); m != nil {
		month, _ := strconv.Atoi(m[1])
		year := baseYear
		if month < int(baseMonth) {
			year++
		}
		if date, ok := calendarDate(year, month, 1); ok {
			return StartDate{Date: date, HasDate: true, Precision: PrecisionMonth}, true
		}
	}

	if reNegotiable.MatchString(trimmed) {
		return StartDate{
			Precision: PrecisionNegotiable,
			Note:      "start date negotiable/unspecified",
		}, true
	}

	return StartDate{Precision: PrecisionUnknown, Note: "could not normalize start date"}, true
}

// calendarDate validates the Y/M/D triple against the real calendar.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
