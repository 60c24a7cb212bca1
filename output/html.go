package output

import (
	"fmt"
	"html/template"
	"io"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/penwyp/rewindcat/models"
)

// HTMLReport renders the year-in-review page: a self-contained document
// with no external assets so it can be opened from disk or shared as-is.
type HTMLReport struct {
	tmpl *template.Template
}

// NewHTMLReport parses the report template.
func NewHTMLReport() (*HTMLReport, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatTokens": FormatTokens,
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLReport{tmpl: tmpl}, nil
}

// Render writes the report for stats to w.
func (r *HTMLReport) Render(w io.Writer, stats *models.AggregateStats) error {
	return r.tmpl.Execute(w, buildReportData(stats))
}

// OpenBrowser opens path in the default browser, best effort.
func OpenBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

type reportData struct {
	Year          int
	TokensTotal   string
	DaysActive    int
	LongestStreak int
	CurrentStreak int
	Sessions      int
	FirstActivity string
	Sources       []sourceCard
	Months        []monthView
	Week          []weekDay
	WeekTrend     string
	Models        []modelRow
	Tools         []toolRow
}

type sourceCard struct {
	Name     string
	Color    string
	Tokens   string
	Days     int
	Sessions int
	Events   int
}

type monthView struct {
	Name string
	Days []dayCell
}

type dayCell struct {
	Date  string
	Title string
	Level int // 0 inactive, 1-4 intensity quartile
}

type weekDay struct {
	Date    string
	Tokens  string
	Percent int
}

type modelRow struct {
	Rank   int
	Name   string
	Tokens string
}

type toolRow struct {
	Name     string
	Tokens   string
	Sessions int
	Events   int
}

func buildReportData(stats *models.AggregateStats) reportData {
	year := stats.GeneratedAt.Year()

	data := reportData{
		Year:          year,
		TokensTotal:   FormatTokens(stats.AllTimeTokens),
		DaysActive:    stats.AllTimeDays,
		LongestStreak: stats.LongestStreak,
		CurrentStreak: stats.CurrentStreak,
		Sessions:      stats.TotalSessions,
		FirstActivity: stats.FirstActivity,
		WeekTrend:     string(stats.WeekTrend),
	}

	for i, source := range stats.PerSource {
		data.Sources = append(data.Sources, sourceCard{
			Name:     source.Source,
			Color:    SourceColor(i),
			Tokens:   FormatTokens(source.Tokens),
			Days:     source.Days,
			Sessions: source.Sessions,
			Events:   source.Events,
		})
	}

	data.Months = buildMonths(stats.YearActivity, year)
	data.Week = buildWeek(stats.ThisWeek)

	for i, model := range stats.PerModel {
		data.Models = append(data.Models, modelRow{
			Rank:   i + 1,
			Name:   model.Model,
			Tokens: FormatTokens(model.TotalTokens),
		})
	}
	for _, tool := range stats.PerTool {
		data.Tools = append(data.Tools, toolRow{
			Name:     string(tool.Tool),
			Tokens:   FormatTokens(tool.Tokens),
			Sessions: tool.Sessions,
			Events:   tool.Events,
		})
	}
	return data
}

// buildMonths lays the zero-filled year activity map out as twelve dot
// columns. Intensity levels are quartiles of the peak day.
func buildMonths(yearActivity map[string]int64, year int) []monthView {
	var max int64
	for _, tokens := range yearActivity {
		if tokens > max {
			max = tokens
		}
	}

	keys := make([]string, 0, len(yearActivity))
	for key := range yearActivity {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	months := make([]monthView, 12)
	for i := range months {
		months[i].Name = time.Month(i + 1).String()[:3]
	}

	for _, key := range keys {
		day, err := time.Parse("2006-01-02", key)
		if err != nil || day.Year() != year {
			continue
		}
		tokens := yearActivity[key]
		level := 0
		if tokens > 0 && max > 0 {
			level = 1 + int(tokens*3/max)
			if level > 4 {
				level = 4
			}
		}
		monthIdx := int(day.Month()) - 1
		months[monthIdx].Days = append(months[monthIdx].Days, dayCell{
			Date:  key,
			Title: key + ": " + strconv.FormatInt(tokens, 10) + " tokens",
			Level: level,
		})
	}
	return months
}

func buildWeek(week []models.DayTokens) []weekDay {
	var max int64
	for _, day := range week {
		if day.Tokens > max {
			max = day.Tokens
		}
	}

	out := make([]weekDay, 0, len(week))
	for _, day := range week {
		percent := 0
		if max > 0 {
			percent = int(day.Tokens * 100 / max)
		}
		out = append(out, weekDay{Date: day.Date, Tokens: FormatTokens(day.Tokens), Percent: percent})
	}
	return out
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Agent Usage Year in Review {{.Year}}</title>
<style>
:root {
  --bg-dark: #1a1a1a;
  --bg-card: #252525;
  --text-primary: #ffffff;
  --text-secondary: #888888;
  --dot-inactive: #333333;
  --accent: #ff6b35;
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  background: var(--bg-dark);
  color: var(--text-primary);
  min-height: 100vh;
  padding: 40px 20px;
}
.container { max-width: 1100px; margin: 0 auto; }
.section { margin-bottom: 60px; }
.section-title { font-size: 30px; font-weight: 300; margin-bottom: 32px; }
.stats-row { display: flex; gap: 48px; flex-wrap: wrap; margin-bottom: 32px; }
.stat-label { font-size: 14px; color: var(--text-secondary); margin-bottom: 6px; }
.stat-value { font-size: 44px; font-weight: 300; }
.source-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 16px; margin-bottom: 40px; }
.source-card { background: var(--bg-card); border-radius: 8px; padding: 18px; }
.source-name { font-size: 15px; font-weight: 500; margin-bottom: 12px; }
.source-stats { display: grid; grid-template-columns: 1fr 1fr; gap: 10px; font-size: 13px; color: var(--text-secondary); }
.source-stats b { display: block; font-size: 20px; font-weight: 300; color: var(--text-primary); }
.calendar { display: flex; gap: 10px; overflow-x: auto; padding-bottom: 12px; }
.month { min-width: 70px; }
.month-label { font-size: 13px; color: var(--text-secondary); margin-bottom: 10px; }
.month-dots { display: flex; flex-direction: column; gap: 3px; }
.dot { width: 9px; height: 9px; border-radius: 50%; background: var(--dot-inactive); }
.dot.l1 { background: #4a2e1e; }
.dot.l2 { background: #8a4526; }
.dot.l3 { background: #c8582d; }
.dot.l4 { background: var(--accent); }
.week-grid { display: flex; gap: 10px; align-items: flex-end; height: 140px; }
.week-col { flex: 1; display: flex; flex-direction: column; justify-content: flex-end; gap: 6px; text-align: center; }
.week-bar { background: var(--accent); border-radius: 3px 3px 0 0; min-height: 2px; }
.week-date { font-size: 11px; color: var(--text-secondary); }
.list-item { font-size: 17px; margin-bottom: 6px; }
.list-rank { color: var(--text-secondary); margin-right: 8px; }
table.tools { border-collapse: collapse; font-size: 15px; }
table.tools td, table.tools th { padding: 6px 18px 6px 0; text-align: left; }
table.tools th { color: var(--text-secondary); font-weight: normal; font-size: 13px; }
</style>
</head>
<body>
<div class="container">
  <section class="section">
    <h1 class="section-title">Agents run on tokens.<br>{{.TokensTotal}} of them were yours in {{.Year}}.</h1>
    <div class="stats-row">
      <div><div class="stat-label">Tokens Used</div><div class="stat-value">{{.TokensTotal}}</div></div>
      <div><div class="stat-label">Days Active</div><div class="stat-value">{{.DaysActive}}</div></div>
      <div><div class="stat-label">Longest Streak</div><div class="stat-value">{{.LongestStreak}}d</div></div>
      <div><div class="stat-label">Sessions</div><div class="stat-value">{{.Sessions}}</div></div>
    </div>
    <div class="source-grid">
      {{range .Sources}}
      <div class="source-card" style="border-left: 4px solid {{.Color}};">
        <div class="source-name" style="color: {{.Color}};">{{.Name}}</div>
        <div class="source-stats">
          <div><b>{{.Tokens}}</b>tokens</div>
          <div><b>{{.Days}}</b>days</div>
          <div><b>{{.Sessions}}</b>sessions</div>
          <div><b>{{.Events}}</b>events</div>
        </div>
      </div>
      {{end}}
    </div>
  </section>

  <section class="section">
    <h2 class="section-title">Every day of {{.Year}}</h2>
    <div class="calendar">
      {{range .Months}}
      <div class="month">
        <div class="month-label">{{.Name}}</div>
        <div class="month-dots">
          {{range .Days}}<div class="dot l{{.Level}}" title="{{.Title}}"></div>{{end}}
        </div>
      </div>
      {{end}}
    </div>
  </section>

  <section class="section">
    <h2 class="section-title">This week ({{.WeekTrend}})</h2>
    <div class="week-grid">
      {{range .Week}}
      <div class="week-col">
        <div class="week-bar" style="height: {{.Percent}}%;"></div>
        <div class="week-date">{{.Date}}</div>
      </div>
      {{end}}
    </div>
  </section>

  {{if .Tools}}
  <section class="section">
    <h2 class="section-title">Tools</h2>
    <table class="tools">
      <tr><th>Tool</th><th>Tokens</th><th>Sessions</th><th>Events</th></tr>
      {{range .Tools}}<tr><td>{{.Name}}</td><td>{{.Tokens}}</td><td>{{.Sessions}}</td><td>{{.Events}}</td></tr>{{end}}
    </table>
  </section>
  {{end}}

  {{if .Models}}
  <section class="section">
    <h2 class="section-title">Models</h2>
    {{range .Models}}<div class="list-item"><span class="list-rank">{{.Rank}}</span>{{.Name}} · {{.Tokens}}</div>{{end}}
  </section>
  {{end}}
</div>
</body>
</html>
`
