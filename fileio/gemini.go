package fileio

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/penwyp/rewindcat/models"
)

// GeminiParser reads Gemini CLI conversation logs: tmp/<hash>/logs.json,
// a JSON array of message entries. The format carries no token counts, so
// every event is zero-token and contributes activity only.
type GeminiParser struct{}

type geminiLogEntry struct {
	SessionID string `json:"sessionId"`
	MessageID int    `json:"messageId"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func (p *GeminiParser) Tool() models.Tool {
	return models.ToolGemini
}

func (p *GeminiParser) DetectRoot(sourceRoot string) (string, bool) {
	return detectDotDir(sourceRoot, ".gemini", "tmp")
}

func (p *GeminiParser) Files(toolRoot string) []string {
	tmpDir := filepath.Join(toolRoot, "tmp")
	if !dirExists(tmpDir) {
		return nil
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		logs := filepath.Join(tmpDir, entry.Name(), "logs.json")
		if fileExists(logs) {
			files = append(files, logs)
		}
	}
	sort.Strings(files)
	return files
}

func (p *GeminiParser) ParseFile(path string) ([]models.UsageEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	var entries []geminiLogEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	var events []models.UsageEvent
	for _, entry := range entries {
		ts, err := ParseTimestamp(entry.Timestamp)
		if err != nil {
			continue // Skip entries without a usable timestamp
		}
		events = append(events, models.UsageEvent{
			Timestamp: ts,
			Tool:      models.ToolGemini,
			SessionID: entry.SessionID,
			MessageID: strconv.Itoa(entry.MessageID),
		})
	}
	return events, nil
}
