package models

import (
	"time"
)

// UsageEvent represents a single recorded unit of tool usage: one
// request/response exchange with its token counts, normalized from
// whatever on-disk format the originating tool uses.
type UsageEvent struct {
	Timestamp           time.Time `json:"timestamp"`
	Tool                Tool      `json:"tool"`
	Model               string    `json:"model,omitempty"`
	SessionID           string    `json:"session_id,omitempty"`
	MessageID           string    `json:"message_id,omitempty"`
	RequestID           string    `json:"request_id,omitempty"`
	InputTokens         int64     `json:"input_tokens"`
	OutputTokens        int64     `json:"output_tokens"`
	CacheCreationTokens int64     `json:"cache_creation_tokens"`
	CacheReadTokens     int64     `json:"cache_read_tokens"`
	TotalTokens         int64     `json:"total_tokens"` // Calculated field
}

// CalculateTotalTokens calculates the total tokens for a usage event
func (e *UsageEvent) CalculateTotalTokens() int64 {
	return e.InputTokens + e.OutputTokens + e.CacheCreationTokens + e.CacheReadTokens
}

// DedupKey returns the cross-file deduplication key for the event, or ""
// when the event carries no stable identity and must not be deduplicated.
func (e *UsageEvent) DedupKey() string {
	if e.MessageID == "" || e.RequestID == "" {
		return ""
	}
	return e.MessageID + ":" + e.RequestID
}

// Source is a named origin of usage events: the local machine, a remote
// host alias, or a pre-fetched directory with a user-supplied name.
type Source struct {
	Name   string       `json:"name"`
	Root   string       `json:"root,omitempty"`
	Events []UsageEvent `json:"events"`
}

// MergeDirective folds all events of Source into Target before reporting.
// Directives chain: resolution is transitive over the whole directive set.
type MergeDirective struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
