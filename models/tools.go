package models

// Tool identifies a supported AI coding assistant. The set is closed:
// parsing strategies are selected by tool identity, not discovered.
type Tool string

const (
	ToolClaudeCode Tool = "claude-code"
	ToolCodex      Tool = "codex"
	ToolGemini     Tool = "gemini"
	ToolOpenCode   Tool = "opencode"
)

// AllTools lists every supported tool in stable order.
func AllTools() []Tool {
	return []Tool{ToolClaudeCode, ToolCodex, ToolGemini, ToolOpenCode}
}

// Valid reports whether t names a supported tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolClaudeCode, ToolCodex, ToolGemini, ToolOpenCode:
		return true
	}
	return false
}

func (t Tool) String() string {
	return string(t)
}
