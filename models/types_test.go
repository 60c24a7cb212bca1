package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageEvent_CalculateTotalTokens(t *testing.T) {
	event := UsageEvent{
		InputTokens:         100,
		OutputTokens:        50,
		CacheCreationTokens: 20,
		CacheReadTokens:     30,
	}

	assert.Equal(t, int64(200), event.CalculateTotalTokens())
}

func TestUsageEvent_CalculateTotalTokens_Zero(t *testing.T) {
	event := UsageEvent{Timestamp: time.Now(), Tool: ToolGemini}

	assert.Equal(t, int64(0), event.CalculateTotalTokens())
}

func TestUsageEvent_DedupKey(t *testing.T) {
	event := UsageEvent{MessageID: "msg_01", RequestID: "req_01"}

	assert.Equal(t, "msg_01:req_01", event.DedupKey())
}

func TestUsageEvent_DedupKey_MissingIdentity(t *testing.T) {
	tests := []struct {
		name  string
		event UsageEvent
	}{
		{"no ids", UsageEvent{}},
		{"message only", UsageEvent{MessageID: "msg_01"}},
		{"request only", UsageEvent{RequestID: "req_01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tt.event.DedupKey())
		})
	}
}

func TestTool_Valid(t *testing.T) {
	for _, tool := range AllTools() {
		assert.True(t, tool.Valid(), "tool %s should be valid", tool)
	}

	assert.False(t, Tool("copilot").Valid())
	assert.False(t, Tool("").Valid())
}

func TestAllTools_StableOrder(t *testing.T) {
	expected := []Tool{ToolClaudeCode, ToolCodex, ToolGemini, ToolOpenCode}

	assert.Equal(t, expected, AllTools())
	assert.Equal(t, expected, AllTools())
}
