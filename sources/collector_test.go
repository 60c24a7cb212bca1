package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/rewindcat/models"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func claudeFixtureLine(msgID, reqID, ts string, input int64) string {
	return fmt.Sprintf(`{"type":"assistant","sessionId":"sess-1","timestamp":%q,"requestId":%q,"message":{"id":%q,"model":"claude-sonnet-4","usage":{"input_tokens":%d,"output_tokens":10,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}`,
		ts, reqID, msgID, input)
}

func TestParseDataPath(t *testing.T) {
	tests := []struct {
		spec string
		name string
		root string
	}{
		{"/data/laptop", "laptop", "/data/laptop"},
		{"/data/laptop:work", "work", "/data/laptop"},
		{"/home/dev/.claude", "dev", "/home/dev/.claude"},
		{"relative/path", "path", "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec := ParseDataPath(tt.spec)
			assert.Equal(t, tt.name, spec.Name)
			assert.Equal(t, tt.root, spec.Root)
		})
	}
}

func TestCollector_Collect(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, ".claude/projects/proj/session.jsonl",
		claudeFixtureLine("m1", "r1", "2025-03-15T10:00:00Z", 100)+"\n"+
			claudeFixtureLine("m2", "r2", "2025-03-15T11:00:00Z", 200))

	collector := NewCollector(time.UTC, nil)
	source, err := collector.Collect(Spec{Name: "laptop", Root: dir})
	require.NoError(t, err)

	assert.Equal(t, "laptop", source.Name)
	require.Len(t, source.Events, 2)
	assert.Equal(t, models.ToolClaudeCode, source.Events[0].Tool)
	assert.Equal(t, time.UTC, source.Events[0].Timestamp.Location())
}

func TestCollector_Collect_DeduplicatesWithinSource(t *testing.T) {
	dir := t.TempDir()
	line := claudeFixtureLine("m1", "r1", "2025-03-15T10:00:00Z", 100)
	writeFixture(t, dir, ".claude/projects/a/session.jsonl", line)
	writeFixture(t, dir, ".claude/projects/b/session.jsonl", line)

	collector := NewCollector(time.UTC, nil)
	source, err := collector.Collect(Spec{Name: "laptop", Root: dir})
	require.NoError(t, err)
	assert.Len(t, source.Events, 1)
}

func TestCollector_Collect_MissingRoot(t *testing.T) {
	collector := NewCollector(time.UTC, nil)

	_, err := collector.Collect(Spec{Name: "gone", Root: "/nonexistent/root"})
	require.Error(t, err)

	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCollector_Collect_EmptyRoot(t *testing.T) {
	// A readable root with no tool directories yields an empty source,
	// not an error.
	collector := NewCollector(time.UTC, nil)
	source, err := collector.Collect(Spec{Name: "empty", Root: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, source.Events)
}

func TestCollector_Collect_NormalizesTimezone(t *testing.T) {
	dir := t.TempDir()
	// 2025-03-15T23:30:00Z is already March 16 in Tokyo.
	writeFixture(t, dir, ".claude/projects/proj/session.jsonl",
		claudeFixtureLine("m1", "r1", "2025-03-15T23:30:00Z", 100))

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	collector := NewCollector(tokyo, nil)
	source, err := collector.Collect(Spec{Name: "laptop", Root: dir})
	require.NoError(t, err)
	require.Len(t, source.Events, 1)
	assert.Equal(t, "2025-03-16", source.Events[0].Timestamp.Format("2006-01-02"))
}

func TestCollector_CollectAll_DuplicateNames(t *testing.T) {
	collector := NewCollector(time.UTC, nil)

	_, err := collector.CollectAll([]Spec{
		{Name: "laptop", Root: t.TempDir()},
		{Name: "laptop", Root: t.TempDir()},
	})
	require.Error(t, err)

	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "merge-sources")
}

func TestCollector_Collect_SkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, ".gemini/tmp/a/logs.json", `not json`)
	writeFixture(t, dir, ".gemini/tmp/b/logs.json",
		`[{"sessionId":"g1","messageId":0,"type":"user","timestamp":"2025-03-15T10:00:00.000Z"}]`)

	collector := NewCollector(time.UTC, nil)
	source, err := collector.Collect(Spec{Name: "laptop", Root: dir})
	require.NoError(t, err)
	assert.Len(t, source.Events, 1)
}
