package server

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/toolkit"
)

// resultToMCP converts a tool Result to the MCP wire form. Errors become
// IsError results so the model can read them; success data is marshaled to
// JSON text for the client to parse.
func resultToMCP(res toolkit.Result, logger log.Logger) *mcp.CallToolResult {
	if res.Status == toolkit.StatusError {
		text := fmt.Sprintf("[%s] %s", res.Error.Code, res.Error.Message)
		if len(res.Error.Details) > 0 {
			detailsJSON, err := json.Marshal(res.Error.Details)
			if err != nil {
				logger.Warn("marshaling error details", "error", err)
			} else {
				text += "\nDetails: " + string(detailsJSON)
			}
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
			IsError: true,
		}
	}

	payload := map[string]any{"message": res.Message}
	if res.Data != nil {
		payload["data"] = res.Data
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("marshaling result data", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "[INTERNAL] result not serializable"}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}
