package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
)

// AskTool handles sharia_ask: one assistant turn on a session.
type AskTool struct {
	assistant Assistant
	search    bool
	reasoning bool
}

func NewAskTool(a Assistant, search, reasoning bool) *AskTool {
	return &AskTool{assistant: a, search: search, reasoning: reasoning}
}

func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("sharia_ask",
		mcp.WithDescription(
			"Ask the Islamic jurisprudence assistant a question. Returns the answer "+
				"followed by the reasoning stage titles and the session id to reuse.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question, preferably in Arabic."),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to continue. A new session is opened when omitted or unknown."),
		),
		mcp.WithBoolean("search",
			mcp.Description("Run search augmentation before answering."),
		),
		mcp.WithBoolean("reasoning",
			mcp.Description("Run the multi-stage reasoning pipeline before answering."),
		),
	)
}

func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}
	sessionID := t.assistant.OpenSession(req.GetString("session_id", ""))

	reply, err := t.assistant.Ask(ctx, sessionID, orchestrator.Request{
		Message:   question,
		Search:    boolArg(req, "search", t.search),
		Reasoning: boolArg(req, "reasoning", t.reasoning),
	})
	if errors.Is(err, orchestrator.ErrEmptyMessage) {
		return mcp.NewToolResultError("'question' is required"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("asking assistant: %w", err)
	}

	var b strings.Builder
	b.WriteString(reply.Text)
	if len(reply.ReasoningLayers) > 0 {
		b.WriteString("\n\n## Reasoning\n")
		for i, l := range reply.ReasoningLayers {
			fmt.Fprintf(&b, "%d. %s\n", i+1, l.Title)
		}
	}
	if reply.Search != nil {
		fmt.Fprintf(&b, "\nSearch reliability: %.0f%%\n", reply.Search.Reliability*100)
	}
	if reply.Degraded {
		b.WriteString("\n(degraded: the answer model was unavailable)\n")
	}
	fmt.Fprintf(&b, "\nsession_id: %s", sessionID)
	return mcp.NewToolResultText(b.String()), nil
}
