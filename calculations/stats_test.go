package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/rewindcat/models"
	"github.com/penwyp/rewindcat/sources"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func usageEvent(ts time.Time, tool models.Tool, tokens int64, sessionID, msgID, reqID string) models.UsageEvent {
	return models.UsageEvent{
		Timestamp:   ts,
		Tool:        tool,
		Model:       "claude-sonnet-4",
		SessionID:   sessionID,
		MessageID:   msgID,
		RequestID:   reqID,
		InputTokens: tokens,
		TotalTokens: tokens,
	}
}

func TestAggregator_Aggregate_Empty(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	stats := agg.Aggregate(nil)
	require.NotNil(t, stats)

	assert.Equal(t, int64(0), stats.AllTimeTokens)
	assert.Equal(t, 0, stats.AllTimeDays)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Empty(t, stats.FirstActivity)
	assert.Len(t, stats.ThisWeek, 7)
	assert.Len(t, stats.YearActivity, 365)
	assert.NotNil(t, stats.Sources)
	assert.Empty(t, stats.Sources)
}

func TestAggregator_Aggregate_TokenConservation(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	src := models.Source{Name: "laptop", Events: []models.UsageEvent{
		usageEvent(now.AddDate(0, 0, -2), models.ToolClaudeCode, 100, "s1", "m1", "r1"),
		usageEvent(now.AddDate(0, 0, -1), models.ToolCodex, 200, "s2", "m2", "r2"),
		usageEvent(now, models.ToolClaudeCode, 300, "s1", "m3", "r3"),
	}}

	stats := agg.Aggregate([]models.Source{src})

	assert.Equal(t, int64(600), stats.AllTimeTokens)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 3, stats.AllTimeDays)
	assert.Equal(t, 2, stats.TotalSessions)

	// Per-tool, per-source and year-activity totals all conserve tokens.
	var toolTotal int64
	for _, rollup := range stats.PerTool {
		toolTotal += rollup.Tokens
	}
	assert.Equal(t, stats.AllTimeTokens, toolTotal)

	var sourceTotal int64
	for _, rollup := range stats.PerSource {
		sourceTotal += rollup.Tokens
	}
	assert.Equal(t, stats.AllTimeTokens, sourceTotal)

	var yearTotal int64
	for _, tokens := range stats.YearActivity {
		yearTotal += tokens
	}
	assert.Equal(t, stats.AllTimeTokens, yearTotal)
}

func TestAggregator_Aggregate_MergedOverlapCountsOnce(t *testing.T) {
	// Two sources with an overlapping exchange: after merging, the
	// shared day counts its tokens once and totals come out to 35.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC) }

	local := models.Source{Name: "local", Events: []models.UsageEvent{
		usageEvent(day(10), models.ToolClaudeCode, 10, "s1", "m1", "r1"),
		usageEvent(day(11), models.ToolClaudeCode, 20, "s1", "m2", "r2"),
	}}
	backup := models.Source{Name: "backup", Events: []models.UsageEvent{
		usageEvent(day(11), models.ToolClaudeCode, 20, "s1", "m2", "r2"),
		usageEvent(day(12), models.ToolClaudeCode, 5, "s1", "m3", "r3"),
	}}

	merged, err := sources.Merge([]models.Source{local, backup},
		[]models.MergeDirective{{Source: "backup", Target: "local"}})
	require.NoError(t, err)

	agg := NewAggregatorAt(time.UTC, fixedClock(now))
	stats := agg.Aggregate(merged)

	assert.Equal(t, int64(35), stats.AllTimeTokens)
	assert.Equal(t, 3, stats.AllTimeDays)
	assert.Equal(t, int64(20), stats.YearActivity["2025-03-11"])
	assert.Equal(t, []string{"local"}, stats.Sources)
}

func TestAggregator_Aggregate_MergedBackupAddsToMiddleDay(t *testing.T) {
	// local has 3 consecutive days (10, 20, 30 tokens); backup adds a
	// distinct 5-token exchange on the middle day. Merged, the middle
	// day totals 25 and the streak spans all 3 days.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC) }

	local := models.Source{Name: "local", Events: []models.UsageEvent{
		usageEvent(day(10), models.ToolClaudeCode, 10, "s1", "m1", "r1"),
		usageEvent(day(11), models.ToolClaudeCode, 20, "s1", "m2", "r2"),
		usageEvent(day(12), models.ToolClaudeCode, 30, "s1", "m3", "r3"),
	}}
	backup := models.Source{Name: "backup", Events: []models.UsageEvent{
		usageEvent(day(11), models.ToolClaudeCode, 5, "s2", "m4", "r4"),
	}}

	merged, err := sources.Merge([]models.Source{local, backup},
		[]models.MergeDirective{{Source: "backup", Target: "local"}})
	require.NoError(t, err)
	require.Len(t, merged, 1)

	agg := NewAggregatorAt(time.UTC, fixedClock(now))
	stats := agg.Aggregate(merged)

	assert.Equal(t, int64(65), stats.AllTimeTokens)
	assert.Equal(t, 3, stats.AllTimeDays)
	assert.Equal(t, int64(25), stats.YearActivity["2025-03-11"])
	assert.Equal(t, 3, stats.LongestStreak)
	assert.Equal(t, 3, stats.CurrentStreak)
}

func TestAggregator_Aggregate_ThisWeek(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	src := models.Source{Name: "laptop", Events: []models.UsageEvent{
		usageEvent(now.AddDate(0, 0, -1), models.ToolClaudeCode, 100, "s1", "m1", "r1"),
		usageEvent(now, models.ToolClaudeCode, 300, "s1", "m2", "r2"),
	}}

	stats := agg.Aggregate([]models.Source{src})
	require.Len(t, stats.ThisWeek, 7)

	assert.Equal(t, "2025-03-09", stats.ThisWeek[0].Date)
	assert.Equal(t, "2025-03-15", stats.ThisWeek[6].Date)
	assert.Equal(t, int64(300), stats.ThisWeek[6].Tokens)
	assert.Equal(t, int64(100), stats.ThisWeek[5].Tokens)
	assert.Equal(t, int64(0), stats.ThisWeek[0].Tokens)
	assert.Equal(t, models.TrendRising, stats.WeekTrend)
}

func TestAggregator_Aggregate_WeekTrendFalling(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	src := models.Source{Name: "laptop", Events: []models.UsageEvent{
		usageEvent(now.AddDate(0, 0, -1), models.ToolClaudeCode, 500, "s1", "m1", "r1"),
		usageEvent(now, models.ToolClaudeCode, 100, "s1", "m2", "r2"),
	}}

	stats := agg.Aggregate([]models.Source{src})
	assert.Equal(t, models.TrendFalling, stats.WeekTrend)
}

func TestAggregator_Aggregate_YearActivityLeapYear(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	stats := agg.Aggregate(nil)
	assert.Len(t, stats.YearActivity, 366)
	assert.Contains(t, stats.YearActivity, "2024-02-29")
}

func TestAggregator_Aggregate_TimezoneBucketing(t *testing.T) {
	// 23:30 UTC on March 15 is the morning of March 16 in Tokyo. The
	// collector normalizes timestamps, so here the event arrives already
	// in the reference timezone.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	eventTime := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC).In(tokyo)
	now := time.Date(2025, 3, 16, 12, 0, 0, 0, tokyo)

	agg := NewAggregatorAt(tokyo, fixedClock(now))
	stats := agg.Aggregate([]models.Source{{
		Name:   "laptop",
		Events: []models.UsageEvent{usageEvent(eventTime, models.ToolClaudeCode, 100, "s1", "m1", "r1")},
	}})

	assert.Equal(t, "2025-03-16", stats.FirstActivity)
	assert.Equal(t, int64(100), stats.YearActivity["2025-03-16"])
	assert.Equal(t, int64(0), stats.YearActivity["2025-03-15"])
}

func TestAggregator_Aggregate_ModelRollupCapped(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	models7 := []string{"model-a", "model-b", "model-c", "model-d", "model-e", "model-f", "model-g"}
	events := make([]models.UsageEvent, 0, len(models7))
	for i, name := range models7 {
		event := usageEvent(now, models.ToolClaudeCode, int64((i+1)*100), "s1", "", "")
		event.Model = name
		events = append(events, event)
	}

	stats := agg.Aggregate([]models.Source{{Name: "laptop", Events: events}})
	require.Len(t, stats.PerModel, 5)

	// Largest first; the two smallest fall off.
	assert.Equal(t, "model-g", stats.PerModel[0].Model)
	assert.Equal(t, "model-c", stats.PerModel[4].Model)
}

func TestAggregator_Aggregate_SourceRollupOrder(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	agg := NewAggregatorAt(time.UTC, fixedClock(now))

	stats := agg.Aggregate([]models.Source{
		{Name: "small", Events: []models.UsageEvent{usageEvent(now, models.ToolClaudeCode, 10, "s1", "m1", "r1")}},
		{Name: "big", Events: []models.UsageEvent{usageEvent(now, models.ToolClaudeCode, 100, "s2", "m2", "r2")}},
	})

	require.Len(t, stats.PerSource, 2)
	assert.Equal(t, "big", stats.PerSource[0].Source)
	assert.Equal(t, "small", stats.PerSource[1].Source)
}
