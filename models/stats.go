package models

import (
	"time"
)

// DayTokens pairs a calendar day (in the run's reference timezone) with
// its total token count.
type DayTokens struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Tokens int64  `json:"tokens"`
}

// ToolRollup aggregates usage grouped by tool, independent of source.
type ToolRollup struct {
	Tool     Tool  `json:"tool"`
	Tokens   int64 `json:"tokens"`
	Sessions int   `json:"sessions"`
	Events   int   `json:"events"`
}

// SourceRollup aggregates usage grouped by final (post-merge) source name.
type SourceRollup struct {
	Source   string `json:"source"`
	Tokens   int64  `json:"tokens"`
	Days     int    `json:"days"`
	Sessions int    `json:"sessions"`
	Events   int    `json:"events"`
}

// ModelRollup aggregates token usage grouped by model identifier.
type ModelRollup struct {
	Model               string `json:"model"`
	InputTokens         int64  `json:"input_tokens"`
	OutputTokens        int64  `json:"output_tokens"`
	CacheCreationTokens int64  `json:"cache_creation_tokens"`
	CacheReadTokens     int64  `json:"cache_read_tokens"`
	TotalTokens         int64  `json:"total_tokens"`
}

// WeekTrend describes how the most recent day compares to the day before it.
type WeekTrend string

const (
	TrendRising  WeekTrend = "rising"
	TrendFalling WeekTrend = "falling"
	TrendFlat    WeekTrend = "flat"
)

// AggregateStats is the full output model of one run. Renderers consume it
// verbatim; the --json output is this structure serialized with no further
// transformation.
type AggregateStats struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Timezone      string    `json:"timezone"`
	AllTimeTokens int64     `json:"all_time_tokens"`
	AllTimeDays   int       `json:"all_time_days"`
	TotalSessions int       `json:"total_sessions"`
	TotalEvents   int       `json:"total_events"`
	LongestStreak int       `json:"longest_streak"`
	CurrentStreak int       `json:"current_streak"`
	FirstActivity string    `json:"first_activity,omitempty"` // YYYY-MM-DD
	LastActivity  string    `json:"last_activity,omitempty"`  // YYYY-MM-DD

	// ThisWeek holds exactly 7 entries, chronological, ending today.
	// Days without activity appear with zero tokens.
	ThisWeek  []DayTokens `json:"this_week"`
	WeekTrend WeekTrend   `json:"week_trend"`

	// YearActivity maps every calendar day of the current year (365 or
	// 366 entries) to its token total; inactive days map to zero.
	YearActivity map[string]int64 `json:"year_activity"`

	PerTool   []ToolRollup   `json:"per_tool"`   // top 5 by tokens
	PerSource []SourceRollup `json:"per_source"` // post-merge names
	PerModel  []ModelRollup  `json:"per_model"`  // top 5 by total tokens

	Sources []string `json:"sources"`
}
