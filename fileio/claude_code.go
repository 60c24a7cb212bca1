package fileio

import (
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/penwyp/rewindcat/models"
)

// ClaudeCodeParser reads Claude Code data directories: per-project session
// transcripts under projects/ plus the prompt history file.
type ClaudeCodeParser struct{}

// claudeRawMessage is one line of a Claude Code session transcript. Only
// assistant messages carry a usage block.
type claudeRawMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
	Message   struct {
		ID    string `json:"id"`
		Model string `json:"model"`
		Usage struct {
			InputTokens              int64 `json:"input_tokens"`
			OutputTokens             int64 `json:"output_tokens"`
			CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// claudeHistoryEntry is one line of history.jsonl. Timestamps appear both
// as RFC3339 strings and as unix milliseconds depending on version.
type claudeHistoryEntry struct {
	Timestamp interface{} `json:"timestamp"`
}

func (p *ClaudeCodeParser) Tool() models.Tool {
	return models.ToolClaudeCode
}

func (p *ClaudeCodeParser) DetectRoot(sourceRoot string) (string, bool) {
	return detectDotDir(sourceRoot, ".claude", "projects", "history.jsonl")
}

func (p *ClaudeCodeParser) Files(toolRoot string) []string {
	var files []string
	if history := filepath.Join(toolRoot, "history.jsonl"); fileExists(history) {
		files = append(files, history)
	}
	projects := filepath.Join(toolRoot, "projects")
	if dirExists(projects) {
		files = append(files, findFilesByExt(projects, ".jsonl")...)
	}
	return files
}

func (p *ClaudeCodeParser) ParseFile(path string) ([]models.UsageEvent, error) {
	if filepath.Base(path) == "history.jsonl" {
		return p.parseHistory(path)
	}
	return p.parseSession(path)
}

// parseSession extracts assistant messages with usage data from a project
// session transcript.
func (p *ClaudeCodeParser) parseSession(path string) ([]models.UsageEvent, error) {
	var events []models.UsageEvent

	err := scanJSONL(path, func(line []byte, lineNum int) {
		var msg claudeRawMessage
		if err := sonic.Unmarshal(line, &msg); err != nil {
			return // Skip malformed lines
		}
		if msg.Type != "assistant" {
			return
		}

		usage := msg.Message.Usage
		if usage.InputTokens == 0 && usage.OutputTokens == 0 &&
			usage.CacheCreationInputTokens == 0 && usage.CacheReadInputTokens == 0 {
			return
		}

		ts, err := ParseTimestamp(msg.Timestamp)
		if err != nil {
			return
		}

		event := models.UsageEvent{
			Timestamp:           ts,
			Tool:                models.ToolClaudeCode,
			Model:               msg.Message.Model,
			SessionID:           msg.SessionID,
			MessageID:           msg.Message.ID,
			RequestID:           msg.RequestID,
			InputTokens:         usage.InputTokens,
			OutputTokens:        usage.OutputTokens,
			CacheCreationTokens: usage.CacheCreationInputTokens,
			CacheReadTokens:     usage.CacheReadInputTokens,
		}
		event.TotalTokens = event.CalculateTotalTokens()
		events = append(events, event)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// parseHistory turns prompt history lines into zero-token activity events.
// History has no usage data but still marks a day as active.
func (p *ClaudeCodeParser) parseHistory(path string) ([]models.UsageEvent, error) {
	var events []models.UsageEvent

	err := scanJSONL(path, func(line []byte, lineNum int) {
		var entry claudeHistoryEntry
		if err := sonic.Unmarshal(line, &entry); err != nil {
			return
		}
		ts, err := ParseTimestamp(entry.Timestamp)
		if err != nil {
			return
		}
		events = append(events, models.UsageEvent{
			Timestamp: ts,
			Tool:      models.ToolClaudeCode,
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
