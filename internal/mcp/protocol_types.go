package mcp

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	// ReadOnly tools never write files or touch the store.
	ReadOnly bool `json:"-"`
	// Destructive tools delete stored samples.
	Destructive bool `json:"-"`
}
