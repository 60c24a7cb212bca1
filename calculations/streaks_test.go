package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activeDaySet(days ...string) map[string]bool {
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

func TestCalculateStreaks_Empty(t *testing.T) {
	current, longest := CalculateStreaks(nil, time.Now())
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestCalculateStreaks_SingleDayToday(t *testing.T) {
	today := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	current, longest := CalculateStreaks(activeDaySet("2025-03-15"), today)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestCalculateStreaks_EndsYesterday(t *testing.T) {
	// A run ending yesterday is still live.
	today := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	current, longest := CalculateStreaks(
		activeDaySet("2025-03-12", "2025-03-13", "2025-03-14"), today)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestCalculateStreaks_TwoDayGapZeroesCurrent(t *testing.T) {
	today := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	current, longest := CalculateStreaks(
		activeDaySet("2025-03-11", "2025-03-12", "2025-03-13"), today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestCalculateStreaks_LongestKeepsHistoricalRun(t *testing.T) {
	today := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	days := activeDaySet(
		"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05",
		"2025-03-14", "2025-03-15",
	)
	current, longest := CalculateStreaks(days, today)
	assert.Equal(t, 2, current)
	assert.Equal(t, 5, longest)
}

func TestCalculateStreaks_CurrentAtMostLongest(t *testing.T) {
	today := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	days := activeDaySet("2025-03-13", "2025-03-14", "2025-03-15")
	current, longest := CalculateStreaks(days, today)
	assert.LessOrEqual(t, current, longest)
}

func TestCalculateStreaks_GapSplitsRuns(t *testing.T) {
	today := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	days := activeDaySet("2025-03-10", "2025-03-11", "2025-03-14", "2025-03-15")
	current, longest := CalculateStreaks(days, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 2, longest)
}
