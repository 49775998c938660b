// Package mcpserver exposes the assistant as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
)

// Assistant is the orchestrator surface the tools need.
type Assistant interface {
	OpenSession(id string) string
	Knowledge(id string) (knowledge.State, error)
	Ask(ctx context.Context, sessionID string, req orchestrator.Request) (orchestrator.Reply, error)
}

type Deps struct {
	Assistant        Assistant
	Version          string
	SearchDefault    bool
	ReasoningDefault bool
}

// New builds the MCP server with every tool registered.
func New(deps Deps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"shariabridge",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	askTool := NewAskTool(deps.Assistant, deps.SearchDefault, deps.ReasoningDefault)
	s.AddTool(askTool.Definition(), askTool.Handle)

	profileTool := NewProfileTool(deps.Assistant)
	s.AddTool(profileTool.Definition(), profileTool.Handle)

	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `shariabridge answers Islamic jurisprudence questions in Arabic.

Call sharia_ask with the user's question. Reuse the returned session_id on
follow-up questions so the assistant keeps the conversation and the user's
profile (preferred madhab, topics, expertise). Call sharia_profile to inspect
what the assistant has learned about a session.`

func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return def
	}
	return v
}
