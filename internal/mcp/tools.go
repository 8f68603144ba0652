package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func emptySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Catalog
		{
			Name:        "list_sessions",
			Description: "List recorded sessions in store order with their start/end time, duration and selection",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"refresh": map[string]any{
						"type":        "boolean",
						"description": "Rebuild the catalog from the store first (clears the selection)",
					},
				},
			},
		},
		{
			Name:        "select_sessions",
			Description: "Select or deselect sessions by name, or all sessions at once",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"names": map[string]any{
						"type":        "array",
						"description": "Session names as returned by list_sessions",
						"items":       map[string]any{"type": "string"},
					},
					"selected": map[string]any{
						"type":        "boolean",
						"description": "New selection state (default true)",
					},
					"all": map[string]any{
						"type":        "boolean",
						"description": "Apply to every session and ignore names",
					},
				},
			},
		},
		{
			Name:        "discard_sessions",
			Description: "Delete every sample of the selected sessions from the store",
			Destructive: true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"confirm": map[string]any{
						"type":        "boolean",
						"description": "Must be true; the deletion cannot be undone",
					},
				},
				"required": []string{"confirm"},
			},
		},

		// Export
		{
			Name:        "export_csv",
			Description: "Write one CSV file per selected session to the data directory",
			InputSchema: emptySchema(),
		},
		{
			Name:        "export_combined",
			Description: "Write all selected sessions into one CSV file, ordered by start time",
			InputSchema: emptySchema(),
		},
		{
			Name:        "export_gpx",
			Description: "Write one GPX track with heart-rate extensions per selected session",
			InputSchema: emptySchema(),
		},
		{
			Name:        "backup_database",
			Description: "Write every stored sample to a new time-stamped backup file, ignoring selection",
			InputSchema: emptySchema(),
		},

		// Restore
		{
			Name:        "list_backups",
			Description: "List backup files in the data directory, newest first",
			ReadOnly:    true,
			InputSchema: emptySchema(),
		},
		{
			Name:        "start_restore",
			Description: "Replace the whole store with the contents of a backup file. Runs in the background; a request while a restore runs is ignored",
			Destructive: true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file": map[string]any{
						"type":        "string",
						"description": "Backup file name from list_backups",
					},
					"confirm": map[string]any{
						"type":        "boolean",
						"description": "Must be true; every stored sample is dropped before the file is read",
					},
				},
				"required": []string{"file", "confirm"},
			},
		},
		{
			Name:        "restore_status",
			Description: "Report whether a restore is running and the outcome of the last one",
			ReadOnly:    true,
			InputSchema: emptySchema(),
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "List recent export, backup, restore and discard outcomes, newest first",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type":        "string",
						"description": "Filter by operation type",
						"enum":        []string{"export_csv", "export_combined", "export_gpx", "backup", "restore", "discard"},
					},
					"failed_only": map[string]any{
						"type":        "boolean",
						"description": "Only operations that reported errors",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of entries (default 20)",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		destructive := def.Destructive
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
			Annotations: &sdkmcp.ToolAnnotations{
				ReadOnlyHint:    def.ReadOnly,
				DestructiveHint: &destructive,
			},
		}, toolHandler(handler, def.Name))
	}
}

func toolHandler(handler *Handler, name string) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		result, err := handler.Handle(ctx, name, args)
		if err != nil {
			handler.logger.Debug("tool call failed", "tool", name, "request_id", getRequestID(ctx), "error", err)
			return errorResult(err), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
