package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/penwyp/rewindcat/models"
)

// ConsoleFormatter renders the stats model as a styled terminal summary.
type ConsoleFormatter struct {
	title     lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	dim       lipgloss.Style
	sourceTag []lipgloss.Style
}

// NewConsoleFormatter creates a console formatter. With noColor set every
// style degrades to plain text.
func NewConsoleFormatter(noColor bool) *ConsoleFormatter {
	f := &ConsoleFormatter{
		title: lipgloss.NewStyle().Bold(true),
		label: lipgloss.NewStyle(),
		value: lipgloss.NewStyle().Bold(true),
		dim:   lipgloss.NewStyle(),
	}
	if !noColor {
		f.title = f.title.Foreground(lipgloss.Color("#ff6b35"))
		f.label = f.label.Foreground(lipgloss.Color("#888888"))
		f.dim = f.dim.Foreground(lipgloss.Color("#555555"))
		for _, color := range sourcePalette {
			f.sourceTag = append(f.sourceTag, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)))
		}
	}
	return f
}

// Format renders the full summary.
func (f *ConsoleFormatter) Format(stats *models.AggregateStats) string {
	var lines []string

	lines = append(lines, f.title.Render("Agent Usage Year in Review"))
	lines = append(lines, f.dim.Render(strings.Repeat("─", 48)))
	lines = append(lines, "")

	lines = append(lines, f.statLine("Tokens used", FormatTokens(stats.AllTimeTokens)))
	lines = append(lines, f.statLine("Days active", fmt.Sprintf("%d", stats.AllTimeDays)))
	lines = append(lines, f.statLine("Sessions", fmt.Sprintf("%d", stats.TotalSessions)))
	lines = append(lines, f.statLine("Longest streak", fmt.Sprintf("%dd", stats.LongestStreak)))
	lines = append(lines, f.statLine("Current streak", fmt.Sprintf("%dd", stats.CurrentStreak)))
	if stats.FirstActivity != "" {
		lines = append(lines, f.statLine("First activity", stats.FirstActivity))
	}
	lines = append(lines, "")

	lines = append(lines, f.renderWeek(stats))

	if len(stats.PerTool) > 0 {
		lines = append(lines, "", f.title.Render("Tools"))
		for _, tool := range stats.PerTool {
			lines = append(lines, fmt.Sprintf("  %-14s %8s tokens  %4d sessions  %5d events",
				tool.Tool, FormatTokens(tool.Tokens), tool.Sessions, tool.Events))
		}
	}

	if len(stats.PerSource) > 0 {
		lines = append(lines, "", f.title.Render("Sources"))
		for i, source := range stats.PerSource {
			name := source.Source
			if len(f.sourceTag) > 0 {
				name = f.sourceTag[i%len(f.sourceTag)].Render(name)
			}
			lines = append(lines, fmt.Sprintf("  %s: %s tokens, %d days, %d sessions, %d events",
				name, FormatTokens(source.Tokens), source.Days, source.Sessions, source.Events))
		}
	}

	if len(stats.PerModel) > 0 {
		lines = append(lines, "", f.title.Render("Models"))
		for i, model := range stats.PerModel {
			lines = append(lines, fmt.Sprintf("  %d. %s (%s tokens)", i+1, model.Model, FormatTokens(model.TotalTokens)))
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *ConsoleFormatter) statLine(label, value string) string {
	return fmt.Sprintf("%s %s", f.label.Render(fmt.Sprintf("%-16s", label)), f.value.Render(value))
}

// renderWeek draws the 7-day sparkline with the trend marker.
func (f *ConsoleFormatter) renderWeek(stats *models.AggregateStats) string {
	bars := []rune("▁▂▃▄▅▆▇█")

	var max int64
	for _, day := range stats.ThisWeek {
		if day.Tokens > max {
			max = day.Tokens
		}
	}

	var spark strings.Builder
	for _, day := range stats.ThisWeek {
		idx := 0
		if max > 0 {
			idx = int(day.Tokens * int64(len(bars)-1) / max)
		}
		spark.WriteRune(bars[idx])
	}

	return fmt.Sprintf("%s %s  %s", f.label.Render(fmt.Sprintf("%-16s", "This week")),
		f.value.Render(spark.String()), f.dim.Render(string(stats.WeekTrend)))
}
