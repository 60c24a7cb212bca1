package fileio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/rewindcat/models"
)

// OpenCodeParser reads OpenCode data: message objects persisted under
// storage/ plus event-stream JSONL files where message.updated carries the
// same assistant info. A message can appear in both places, so its id
// doubles as the dedup identity.
type OpenCodeParser struct{}

type opencodeEnvelope struct {
	Type       string `json:"type"`
	Event      string `json:"event"`
	Properties struct {
		Info opencodeAssistantInfo `json:"info"`
	} `json:"properties"`
}

type opencodeAssistantInfo struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionID"`
	Role      string `json:"role"`
	ModelID   string `json:"modelID"`
	Tokens    struct {
		Input     int64 `json:"input"`
		Output    int64 `json:"output"`
		Reasoning int64 `json:"reasoning"`
		Cache     struct {
			Read  int64 `json:"read"`
			Write int64 `json:"write"`
		} `json:"cache"`
	} `json:"tokens"`
	Time struct {
		Created   int64 `json:"created"` // unix millis
		Completed int64 `json:"completed"`
	} `json:"time"`
}

func (p *OpenCodeParser) Tool() models.Tool {
	return models.ToolOpenCode
}

func (p *OpenCodeParser) DetectRoot(sourceRoot string) (string, bool) {
	if root, ok := detectDotDir(sourceRoot, ".opencode", "storage", "events", "logs"); ok {
		return root, true
	}
	// XDG layouts used by newer releases.
	for _, nested := range []string{
		filepath.Join(sourceRoot, ".local", "share", "opencode"),
		filepath.Join(sourceRoot, ".local", "state", "opencode"),
	} {
		for _, marker := range []string{"storage", "events", "logs"} {
			if dirExists(filepath.Join(nested, marker)) {
				return nested, true
			}
		}
	}
	return "", false
}

func (p *OpenCodeParser) Files(toolRoot string) []string {
	var files []string
	if storage := filepath.Join(toolRoot, "storage"); dirExists(storage) {
		files = append(files, findFilesByExt(storage, ".json")...)
	}
	for _, sub := range []string{"events", "logs"} {
		dir := filepath.Join(toolRoot, sub)
		if dirExists(dir) {
			files = append(files, findFilesByExt(dir, ".jsonl", ".ndjson")...)
		}
	}
	return files
}

func (p *OpenCodeParser) ParseFile(path string) ([]models.UsageEvent, error) {
	if filepath.Ext(path) == ".json" {
		return p.parseStorageFile(path)
	}
	return p.parseEventStream(path)
}

// parseStorageFile reads one persisted message object.
func (p *OpenCodeParser) parseStorageFile(path string) ([]models.UsageEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	var info opencodeAssistantInfo
	if err := sonic.Unmarshal(data, &info); err != nil {
		return nil, &models.ParseError{Path: path, Err: err}
	}

	event, ok := p.eventFromInfo(info)
	if !ok {
		return nil, nil
	}
	return []models.UsageEvent{event}, nil
}

func (p *OpenCodeParser) parseEventStream(path string) ([]models.UsageEvent, error) {
	var events []models.UsageEvent

	err := scanJSONL(path, func(line []byte, lineNum int) {
		var env opencodeEnvelope
		if err := sonic.Unmarshal(line, &env); err != nil {
			return
		}

		typ := env.Type
		if typ == "" {
			typ = env.Event
		}
		if typ != "message.updated" {
			return
		}

		if event, ok := p.eventFromInfo(env.Properties.Info); ok {
			events = append(events, event)
		}
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// eventFromInfo converts an assistant message record to a usage event.
// Non-assistant and timeless records are dropped.
func (p *OpenCodeParser) eventFromInfo(info opencodeAssistantInfo) (models.UsageEvent, bool) {
	if !strings.EqualFold(strings.TrimSpace(info.Role), "assistant") {
		return models.UsageEvent{}, false
	}

	millis := info.Time.Completed
	if millis == 0 {
		millis = info.Time.Created
	}
	if millis == 0 {
		return models.UsageEvent{}, false
	}
	ts, err := ParseTimestamp(millis)
	if err != nil {
		return models.UsageEvent{}, false
	}

	event := models.UsageEvent{
		Timestamp: ts,
		Tool:      models.ToolOpenCode,
		Model:     info.ModelID,
		SessionID: info.SessionID,
		MessageID: info.ID,
		// The message id is the only stable identity this format has;
		// it fills both slots so the storage copy and the event-stream
		// copy of a message collapse to one event.
		RequestID:           info.ID,
		InputTokens:         info.Tokens.Input,
		OutputTokens:        info.Tokens.Output + info.Tokens.Reasoning,
		CacheCreationTokens: info.Tokens.Cache.Write,
		CacheReadTokens:     info.Tokens.Cache.Read,
	}
	event.TotalTokens = event.CalculateTotalTokens()
	return event, true
}
