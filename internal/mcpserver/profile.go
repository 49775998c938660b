package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ProfileTool handles sharia_profile: the knowledge snapshot of a session.
type ProfileTool struct {
	assistant Assistant
}

func NewProfileTool(a Assistant) *ProfileTool {
	return &ProfileTool{assistant: a}
}

func (t *ProfileTool) Definition() mcp.Tool {
	return mcp.NewTool("sharia_profile",
		mcp.WithDescription("Return what the assistant has learned in a session as JSON: user profile, topics, references and conversation state."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by sharia_ask."),
		),
	)
}

func (t *ProfileTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	st, err := t.assistant.Knowledge(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Session %q not found", id)), nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding knowledge: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
