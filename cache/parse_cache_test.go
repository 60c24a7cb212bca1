package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/rewindcat/models"
)

func openTestCache(t *testing.T) *ParseCache {
	t.Helper()
	c, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "badger")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeLogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCache_RoundTrip(t *testing.T) {
	c := openTestCache(t)
	path := writeLogFile(t, `{"some":"log"}`)

	checksum, err := Checksum(path)
	require.NoError(t, err)

	summary := &FileSummary{
		Path:     path,
		Checksum: checksum,
		Tool:     models.ToolClaudeCode,
		Events: []models.UsageEvent{{
			Timestamp:   time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
			Tool:        models.ToolClaudeCode,
			MessageID:   "m1",
			RequestID:   "r1",
			InputTokens: 100,
			TotalTokens: 100,
		}},
		ParsedAt: time.Now(),
	}
	require.NoError(t, c.Put(summary))

	got, ok := c.Get(path)
	require.True(t, ok)
	assert.Equal(t, models.ToolClaudeCode, got.Tool)
	require.Len(t, got.Events, 1)
	assert.Equal(t, int64(100), got.Events[0].TotalTokens)
	assert.Equal(t, "m1:r1", got.Events[0].DedupKey())
}

func TestParseCache_Miss(t *testing.T) {
	c := openTestCache(t)
	path := writeLogFile(t, `{}`)

	_, ok := c.Get(path)
	assert.False(t, ok)
}

func TestParseCache_StaleChecksum(t *testing.T) {
	c := openTestCache(t)
	path := writeLogFile(t, `{"v":1}`)

	checksum, err := Checksum(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(&FileSummary{Path: path, Checksum: checksum}))

	// Grow the file and backdate nothing; the size change alone
	// invalidates the entry.
	require.NoError(t, os.WriteFile(path, []byte(`{"v":1,"more":"data"}`), 0o644))

	_, ok := c.Get(path)
	assert.False(t, ok)
}

func TestParseCache_ClosedCache(t *testing.T) {
	c := openTestCache(t)
	path := writeLogFile(t, `{}`)
	require.NoError(t, c.Close())

	_, ok := c.Get(path)
	assert.False(t, ok)
	assert.Error(t, c.Put(&FileSummary{Path: path}))
}

func TestChecksum_MissingFile(t *testing.T) {
	_, err := Checksum("/nonexistent/file.jsonl")
	assert.Error(t, err)
}
