package fileio

import (
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/rewindcat/models"
)

// CodexParser reads Codex CLI session logs: sessions/**/*.jsonl files of
// typed envelopes. Token usage arrives as running totals in token_count
// events, so consecutive counts are converted to per-turn deltas.
type CodexParser struct{}

type codexEnvelope struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Payload   struct {
		// session_meta
		ID        string `json:"id"`
		SessionID string `json:"session_id"`
		// session_meta and turn_context
		Model string `json:"model"`
		// event_msg
		MsgType string `json:"type"`
		Info    *struct {
			TotalTokenUsage codexTokenUsage `json:"total_token_usage"`
		} `json:"info"`
	} `json:"payload"`
}

type codexTokenUsage struct {
	InputTokens           int64 `json:"input_tokens"`
	CachedInputTokens     int64 `json:"cached_input_tokens"`
	OutputTokens          int64 `json:"output_tokens"`
	ReasoningOutputTokens int64 `json:"reasoning_output_tokens"`
	TotalTokens           int64 `json:"total_tokens"`
}

func (p *CodexParser) Tool() models.Tool {
	return models.ToolCodex
}

func (p *CodexParser) DetectRoot(sourceRoot string) (string, bool) {
	return detectDotDir(sourceRoot, ".codex", "sessions")
}

func (p *CodexParser) Files(toolRoot string) []string {
	sessions := filepath.Join(toolRoot, "sessions")
	if !dirExists(sessions) {
		return nil
	}
	return findFilesByExt(sessions, ".jsonl")
}

func (p *CodexParser) ParseFile(path string) ([]models.UsageEvent, error) {
	sessionID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model := ""
	var previous codexTokenUsage
	hasPrevious := false

	var events []models.UsageEvent
	err := scanJSONL(path, func(line []byte, lineNum int) {
		var env codexEnvelope
		if err := sonic.Unmarshal(line, &env); err != nil {
			return
		}

		switch env.Type {
		case "session_meta":
			if id := firstNonEmpty(env.Payload.SessionID, env.Payload.ID); id != "" {
				sessionID = id
			}
			if m := strings.TrimSpace(env.Payload.Model); m != "" {
				model = m
			}
		case "turn_context":
			if m := strings.TrimSpace(env.Payload.Model); m != "" {
				model = m
			}
		case "event_msg":
			if env.Payload.MsgType != "token_count" || env.Payload.Info == nil {
				return
			}
			total := env.Payload.Info.TotalTokenUsage
			delta := total
			if hasPrevious {
				delta = codexUsageDelta(total, previous)
			}
			previous = total
			hasPrevious = true

			if delta.TotalTokens <= 0 {
				return
			}
			ts, err := ParseTimestamp(env.Timestamp)
			if err != nil {
				return
			}

			// Cached input is a subset of input in this format;
			// split it out so the total counts each token once.
			input := delta.InputTokens - delta.CachedInputTokens
			if input < 0 {
				input = delta.InputTokens
			}
			event := models.UsageEvent{
				Timestamp:       ts,
				Tool:            models.ToolCodex,
				Model:           model,
				SessionID:       sessionID,
				InputTokens:     input,
				OutputTokens:    delta.OutputTokens + delta.ReasoningOutputTokens,
				CacheReadTokens: delta.CachedInputTokens,
			}
			event.TotalTokens = event.CalculateTotalTokens()
			events = append(events, event)
		}
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// codexUsageDelta subtracts running totals. A negative component means the
// counter reset (new backing conversation); fall back to the raw total.
func codexUsageDelta(current, previous codexTokenUsage) codexTokenUsage {
	delta := codexTokenUsage{
		InputTokens:           current.InputTokens - previous.InputTokens,
		CachedInputTokens:     current.CachedInputTokens - previous.CachedInputTokens,
		OutputTokens:          current.OutputTokens - previous.OutputTokens,
		ReasoningOutputTokens: current.ReasoningOutputTokens - previous.ReasoningOutputTokens,
		TotalTokens:           current.TotalTokens - previous.TotalTokens,
	}
	if delta.InputTokens < 0 || delta.OutputTokens < 0 || delta.TotalTokens < 0 {
		return current
	}
	return delta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
