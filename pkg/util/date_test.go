package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	day, ok := ParseDay("2026-03-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), day)

	_, ok = ParseDay("")
	assert.False(t, ok)

	_, ok = ParseDay("15/03/2026")
	assert.False(t, ok)
}

func TestFormatDayRoundTrip(t *testing.T) {
	day, ok := ParseDay("2026-01-02")
	require.True(t, ok)
	assert.Equal(t, "2026-01-02", FormatDay(day))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysUntil(now, time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)))

	// partial days round up
	assert.Equal(t, 5, DaysUntil(now, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, 0, DaysUntil(now, now))
	assert.LessOrEqual(t, DaysUntil(now, now.Add(-48*time.Hour)), 0)
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 7, 4, 18, 22, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 123.46, RoundTo(123.456, 2))
	assert.Equal(t, 0.123, RoundTo(0.12345, 3))
	assert.Equal(t, 100.0, RoundTo(100.0, 2))
}
