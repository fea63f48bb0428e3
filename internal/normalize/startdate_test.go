package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeStartDateAsapAndExact(t *testing.T) {
	received := base(2026, 1, 10)

	asap, ok := NormalizeStartDate("即日", received)
	require.True(t, ok)
	assert.True(t, asap.HasDate)
	assert.Equal(t, base(2026, 1, 10), asap.Date)
	assert.Equal(t, PrecisionAsap, asap.Precision)

	exact, ok := NormalizeStartDate("2026/02/15", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 2, 15), exact.Date)
	assert.Equal(t, PrecisionExactDay, exact.Precision)

	dashed, ok := NormalizeStartDate("2026-03-01", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 3, 1), dashed.Date)
}

func TestNormalizeStartDateNextMonthAndMonthParts(t *testing.T) {
	received := base(2026, 1, 28)

	nextMonth, ok := NormalizeStartDate("来月", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 2, 1), nextMonth.Date)
	assert.Equal(t, PrecisionMonth, nextMonth.Precision)

	late, ok := NormalizeStartDate("3月下旬", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 3, 25), late.Date)

	early, ok := NormalizeStartDate("4月上旬", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 4, 5), early.Date)

	middle, ok := NormalizeStartDate("5月中旬", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 5, 15), middle.Date)
}

func TestNormalizeStartDateRollsIntoNextYear(t *testing.T) {
	received := base(2026, 12, 15)

	nextMonth, ok := NormalizeStartDate("来月", received)
	require.True(t, ok)
	assert.Equal(t, base(2027, 1, 1), nextMonth.Date)

	november, ok := NormalizeStartDate("11月", received)
	require.True(t, ok)
	assert.Equal(t, base(2027, 11, 1), november.Date)
}

func TestNormalizeStartDateQuarterForms(t *testing.T) {
	received := base(2026, 1, 10)

	q2, ok := NormalizeStartDate("2027Q2", received)
	require.True(t, ok)
	assert.Equal(t, base(2027, 4, 1), q2.Date)
	assert.Equal(t, PrecisionQuarter, q2.Precision)
	assert.Empty(t, q2.Note)

	// Year omitted: assumed from the received-at date and noted.
	q3, ok := NormalizeStartDate("第3四半期", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 7, 1), q3.Date)
	assert.Equal(t, PrecisionQuarter, q3.Precision)
	assert.Contains(t, q3.Note, "year assumed from received_at")

	q1, ok := NormalizeStartDate("Q1開始", received)
	require.True(t, ok)
	assert.Equal(t, base(2026, 1, 1), q1.Date)
}

func TestNormalizeStartDateNegotiableAndUnknown(t *testing.T) {
	received := base(2026, 1, 10)

	negotiable, ok := NormalizeStartDate("参画時期は応相談です", received)
	require.True(t, ok)
	assert.False(t, negotiable.HasDate)
	assert.Equal(t, PrecisionNegotiable, negotiable.Precision)
	assert.Contains(t, negotiable.Note, "negotiable")

	unknown, ok := NormalizeStartDate("未定です", received)
	require.True(t, ok)
	assert.False(t, unknown.HasDate)
	assert.Equal(t, PrecisionUnknown, unknown.Precision)

	_, ok = NormalizeStartDate("  ", received)
	assert.False(t, ok)
}

func TestNormalizeStartDateIsPure(t *testing.T) {
	received := base(2026, 1, 10)
	first, ok1 := NormalizeStartDate("第3四半期", received)
	second, ok2 := NormalizeStartDate("第3四半期", received)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestResolveReceivedAt(t *testing.T) {
	email := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	fallback := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	resolved, err := ResolveReceivedAt(&email, &fallback)
	assert.NoError(t, err)
	assert.Equal(t, base(2026, 2, 10), resolved)

	resolved, err = ResolveReceivedAt(nil, &fallback)
	assert.NoError(t, err)
	assert.Equal(t, base(2025, 12, 1), resolved)

	_, err = ResolveReceivedAt(nil, nil)
	assert.ErrorIs(t, err, ErrMissingReceivedAt)
}
