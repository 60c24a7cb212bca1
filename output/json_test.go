package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/rewindcat/models"
)

func sampleStats() *models.AggregateStats {
	return &models.AggregateStats{
		GeneratedAt:   time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		Timezone:      "UTC",
		AllTimeTokens: 600,
		AllTimeDays:   3,
		TotalSessions: 2,
		TotalEvents:   3,
		LongestStreak: 3,
		CurrentStreak: 3,
		FirstActivity: "2025-03-13",
		LastActivity:  "2025-03-15",
		ThisWeek:      []models.DayTokens{{Date: "2025-03-15", Tokens: 300}},
		WeekTrend:     models.TrendRising,
		YearActivity:  map[string]int64{"2025-03-15": 300},
		PerTool:       []models.ToolRollup{{Tool: models.ToolClaudeCode, Tokens: 600, Sessions: 2, Events: 3}},
		PerSource:     []models.SourceRollup{{Source: "laptop", Tokens: 600, Days: 3, Sessions: 2, Events: 3}},
		PerModel:      []models.ModelRollup{{Model: "claude-sonnet-4", TotalTokens: 600}},
		Sources:       []string{"laptop"},
	}
}

func TestWriteJSON_Contract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleStats()))

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))

	for _, key := range []string{
		"generated_at", "timezone", "all_time_tokens", "all_time_days",
		"total_sessions", "total_events", "longest_streak", "current_streak",
		"first_activity", "last_activity", "this_week", "week_trend",
		"year_activity", "per_tool", "per_source", "per_model", "sources",
	} {
		assert.Contains(t, decoded, key)
	}

	assert.Equal(t, "rising", decoded["week_trend"])
	assert.Equal(t, float64(600), decoded["all_time_tokens"])
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_234, "1.2K"},
		{999_999, "1000.0K"},
		{2_500_000, "2.50M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTokens(tt.n))
	}
}

func TestSourceColor_Wraps(t *testing.T) {
	assert.Equal(t, SourceColor(0), SourceColor(len(sourcePalette)))
	assert.NotEmpty(t, SourceColor(-1))
}

func TestConsoleFormatter_Format(t *testing.T) {
	f := NewConsoleFormatter(true)
	out := f.Format(sampleStats())

	assert.Contains(t, out, "Year in Review")
	assert.Contains(t, out, "600")
	assert.Contains(t, out, "laptop")
	assert.Contains(t, out, "claude-code")
}
