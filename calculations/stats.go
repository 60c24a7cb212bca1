package calculations

import (
	"sort"
	"time"

	"github.com/penwyp/rewindcat/models"
	"github.com/samber/lo"
)

// topN caps the per-tool and per-model rollups in the output model.
const topN = 5

// Aggregator computes the AggregateStats model from merged sources. It is
// a pure in-memory computation: all bucketing uses the reference timezone
// fixed at construction, and "today" comes from the injected clock so
// streak edges are testable.
type Aggregator struct {
	loc *time.Location
	now func() time.Time
}

// NewAggregator creates an aggregator bucketing in loc. A nil loc falls
// back to the system timezone.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc, now: time.Now}
}

// NewAggregatorAt creates an aggregator with a fixed clock.
func NewAggregatorAt(loc *time.Location, now func() time.Time) *Aggregator {
	agg := NewAggregator(loc)
	if now != nil {
		agg.now = now
	}
	return agg
}

type toolAccumulator struct {
	tokens   int64
	sessions map[string]bool
	events   int
}

type sourceAccumulator struct {
	tokens   int64
	days     map[string]bool
	sessions map[string]bool
	events   int
}

// Aggregate computes the full statistics model. An empty source set is
// not an error: it yields all-zero stats with a fully populated year
// activity map.
func (a *Aggregator) Aggregate(sources []models.Source) *models.AggregateStats {
	now := a.now().In(a.loc)

	dailyTokens := make(map[string]int64)
	activeDays := make(map[string]bool)
	globalSessions := make(map[string]bool)

	perTool := make(map[models.Tool]*toolAccumulator)
	perSource := make(map[string]*sourceAccumulator)
	perModel := make(map[string]*models.ModelRollup)

	var allTimeTokens int64
	totalEvents := 0
	firstDay, lastDay := "", ""

	for _, source := range sources {
		src, ok := perSource[source.Name]
		if !ok {
			src = &sourceAccumulator{days: make(map[string]bool), sessions: make(map[string]bool)}
			perSource[source.Name] = src
		}

		for _, event := range source.Events {
			day := a.dayKey(event.Timestamp)

			dailyTokens[day] += event.TotalTokens
			activeDays[day] = true
			allTimeTokens += event.TotalTokens
			totalEvents++

			if firstDay == "" || day < firstDay {
				firstDay = day
			}
			if day > lastDay {
				lastDay = day
			}

			src.tokens += event.TotalTokens
			src.days[day] = true
			src.events++

			tool, ok := perTool[event.Tool]
			if !ok {
				tool = &toolAccumulator{sessions: make(map[string]bool)}
				perTool[event.Tool] = tool
			}
			tool.tokens += event.TotalTokens
			tool.events++

			if event.SessionID != "" {
				sessionKey := string(event.Tool) + ":" + event.SessionID
				tool.sessions[event.SessionID] = true
				src.sessions[sessionKey] = true
				globalSessions[sessionKey] = true
			}

			if event.Model != "" {
				model, ok := perModel[event.Model]
				if !ok {
					model = &models.ModelRollup{Model: event.Model}
					perModel[event.Model] = model
				}
				model.InputTokens += event.InputTokens
				model.OutputTokens += event.OutputTokens
				model.CacheCreationTokens += event.CacheCreationTokens
				model.CacheReadTokens += event.CacheReadTokens
				model.TotalTokens += event.TotalTokens
			}
		}
	}

	current, longest := CalculateStreaks(activeDays, now)

	stats := &models.AggregateStats{
		GeneratedAt:   now,
		Timezone:      a.loc.String(),
		AllTimeTokens: allTimeTokens,
		AllTimeDays:   len(activeDays),
		TotalSessions: len(globalSessions),
		TotalEvents:   totalEvents,
		LongestStreak: longest,
		CurrentStreak: current,
		FirstActivity: firstDay,
		LastActivity:  lastDay,
		ThisWeek:      a.thisWeek(dailyTokens, now),
		YearActivity:  a.yearActivity(dailyTokens, now),
		PerTool:       rollupTools(perTool),
		PerSource:     rollupSources(sources, perSource),
		PerModel:      rollupModels(perModel),
		Sources:       lo.Map(sources, func(s models.Source, _ int) string { return s.Name }),
	}
	stats.WeekTrend = weekTrend(stats.ThisWeek)
	return stats
}

func (a *Aggregator) dayKey(t time.Time) string {
	return t.In(a.loc).Format(dayLayout)
}

// thisWeek returns the 7 most recent calendar days ending today, in
// chronological order, zero-filled for inactive days.
func (a *Aggregator) thisWeek(dailyTokens map[string]int64, now time.Time) []models.DayTokens {
	week := make([]models.DayTokens, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).Format(dayLayout)
		week = append(week, models.DayTokens{Date: day, Tokens: dailyTokens[day]})
	}
	return week
}

// yearActivity maps every calendar day of the current year to its token
// total, so renderers can draw a full heatmap without gap-filling.
func (a *Aggregator) yearActivity(dailyTokens map[string]int64, now time.Time) map[string]int64 {
	year := now.Year()
	activity := make(map[string]int64, 366)

	day := time.Date(year, time.January, 1, 0, 0, 0, 0, a.loc)
	for day.Year() == year {
		key := day.Format(dayLayout)
		activity[key] = dailyTokens[key]
		day = day.AddDate(0, 0, 1)
	}
	return activity
}

// weekTrend compares the latest day against the day before it.
func weekTrend(week []models.DayTokens) models.WeekTrend {
	if len(week) < 2 {
		return models.TrendFlat
	}
	last := week[len(week)-1].Tokens
	previous := week[len(week)-2].Tokens
	switch {
	case last > previous:
		return models.TrendRising
	case last < previous:
		return models.TrendFalling
	}
	return models.TrendFlat
}

func rollupTools(perTool map[models.Tool]*toolAccumulator) []models.ToolRollup {
	rollups := lo.MapToSlice(perTool, func(tool models.Tool, acc *toolAccumulator) models.ToolRollup {
		return models.ToolRollup{
			Tool:     tool,
			Tokens:   acc.tokens,
			Sessions: len(acc.sessions),
			Events:   acc.events,
		}
	})
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].Tokens != rollups[j].Tokens {
			return rollups[i].Tokens > rollups[j].Tokens
		}
		return rollups[i].Tool < rollups[j].Tool
	})
	if len(rollups) > topN {
		rollups = rollups[:topN]
	}
	return rollups
}

func rollupSources(sources []models.Source, perSource map[string]*sourceAccumulator) []models.SourceRollup {
	rollups := make([]models.SourceRollup, 0, len(sources))
	for _, source := range sources {
		acc := perSource[source.Name]
		rollups = append(rollups, models.SourceRollup{
			Source:   source.Name,
			Tokens:   acc.tokens,
			Days:     len(acc.days),
			Sessions: len(acc.sessions),
			Events:   acc.events,
		})
	}
	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].Tokens != rollups[j].Tokens {
			return rollups[i].Tokens > rollups[j].Tokens
		}
		return rollups[i].Source < rollups[j].Source
	})
	return rollups
}

func rollupModels(perModel map[string]*models.ModelRollup) []models.ModelRollup {
	rollups := lo.MapToSlice(perModel, func(_ string, rollup *models.ModelRollup) models.ModelRollup {
		return *rollup
	})
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].TotalTokens != rollups[j].TotalTokens {
			return rollups[i].TotalTokens > rollups[j].TotalTokens
		}
		return rollups[i].Model < rollups[j].Model
	})
	if len(rollups) > topN {
		rollups = rollups[:topN]
	}
	return rollups
}
