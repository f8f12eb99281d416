package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveLocation(t *testing.T) {
	assert.Equal(t, "Europe/Berlin", ResolveLocation(strPtr("Europe/Berlin"), DefaultZone).String())
	assert.Equal(t, DefaultZone, ResolveLocation(nil, DefaultZone).String())
	assert.Equal(t, DefaultZone, ResolveLocation(strPtr("  "), DefaultZone).String())
	assert.Equal(t, DefaultZone, ResolveLocation(strPtr("Mars/Olympus"), DefaultZone).String())
	assert.Equal(t, DefaultZone, ResolveLocation(nil, "").String())
	assert.Equal(t, time.UTC, ResolveLocation(nil, "Nowhere/Atall"))
}

func TestToday_UsesUserZone(t *testing.T) {
	// 02:00 UTC on Wednesday is still Tuesday evening in São Paulo
	now := time.Date(2024, 1, 17, 2, 0, 0, 0, time.UTC)
	sp := ResolveLocation(nil, DefaultZone)

	assert.Equal(t, "2024-01-16", Today(now, sp))
	assert.Equal(t, "2024-01-17", Today(now, time.UTC))
}

func TestWeek(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		now        time.Time
		start, end string
	}{
		{time.Date(2024, 1, 15, 9, 0, 0, 0, loc), "2024-01-15", "2024-01-21"},
		{time.Date(2024, 1, 17, 9, 0, 0, 0, loc), "2024-01-15", "2024-01-21"},
		{time.Date(2024, 1, 21, 23, 0, 0, 0, loc), "2024-01-15", "2024-01-21"},
		{time.Date(2024, 12, 31, 9, 0, 0, 0, loc), "2024-12-30", "2025-01-05"},
	}
	for _, tc := range cases {
		start, end := Week(tc.now, loc)
		assert.Equal(t, tc.start, start, tc.now.String())
		assert.Equal(t, tc.end, end, tc.now.String())
	}
}

func TestWeekdays(t *testing.T) {
	for d := 0; d < 7; d++ {
		now := time.Date(2024, 3, 4+d, 10, 0, 0, 0, time.UTC)
		days := Weekdays(now, time.UTC)
		require.Len(t, days, 5)
		assert.Equal(t, time.Monday, days[0].Weekday())
		assert.Equal(t, time.Friday, days[4].Weekday())
		assert.Equal(t, "2024-03-04", days[0].Format(DateLayout))
	}
}

func TestWeek_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts Sunday 2024-03-10
	now := time.Date(2024, 3, 10, 1, 30, 0, 0, ny)
	start, end := Week(now, ny)
	assert.Equal(t, "2024-03-04", start)
	assert.Equal(t, "2024-03-10", end)
}

func TestLocalDate(t *testing.T) {
	ts := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-14", LocalDate(ts, ResolveLocation(nil, DefaultZone)))
	assert.Equal(t, "2024-01-15", LocalDate(ts, time.UTC))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-02-29"))
	assert.False(t, ValidDate("2023-02-29"))
	assert.False(t, ValidDate("15/01/2024"))
}
