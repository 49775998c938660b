package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
)

type fakeAssistant struct {
	opened   []string
	requests []orchestrator.Request
	reply    orchestrator.Reply
	err      error
	states   map[string]knowledge.State
}

func (f *fakeAssistant) OpenSession(id string) string {
	if id == "" {
		id = "generated"
	}
	f.opened = append(f.opened, id)
	return id
}

func (f *fakeAssistant) Knowledge(id string) (knowledge.State, error) {
	st, ok := f.states[id]
	if !ok {
		return knowledge.State{}, orchestrator.ErrSessionNotFound
	}
	return st, nil
}

func (f *fakeAssistant) Ask(_ context.Context, _ string, req orchestrator.Request) (orchestrator.Reply, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAskToolDefinition(t *testing.T) {
	def := NewAskTool(&fakeAssistant{}, true, true).Definition()
	assert.Equal(t, "sharia_ask", def.Name)
	assert.Contains(t, def.InputSchema.Required, "question")
}

func TestAskToolHandle(t *testing.T) {
	fa := &fakeAssistant{reply: orchestrator.Reply{
		Text:            "👨🏻‍⚕️ المساعد الشرعي: الجواب",
		ReasoningLayers: []reasoning.Layer{{Title: "تصنيف"}, {Title: "أدلة"}},
		Search:          &search.Result{Reliability: 0.9},
	}}
	tool := NewAskTool(fa, true, true)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"question":   "ما حكم الربا؟",
		"session_id": "s1",
		"reasoning":  false,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(result)
	assert.True(t, strings.HasPrefix(text, fa.reply.Text))
	assert.Contains(t, text, "1. تصنيف")
	assert.Contains(t, text, "Search reliability: 90%")
	assert.Contains(t, text, "session_id: s1")

	require.Len(t, fa.requests, 1)
	assert.True(t, fa.requests[0].Search, "search falls back to the default")
	assert.False(t, fa.requests[0].Reasoning, "explicit argument wins")
	assert.Equal(t, []string{"s1"}, fa.opened)
}

func TestAskToolErrors(t *testing.T) {
	tool := NewAskTool(&fakeAssistant{}, false, false)
	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"question": "  "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	failing := NewAskTool(&fakeAssistant{err: errors.New("boom")}, false, false)
	_, err = failing.Handle(context.Background(), callRequest(map[string]any{"question": "سؤال"}))
	assert.Error(t, err)
}

func TestProfileTool(t *testing.T) {
	fa := &fakeAssistant{states: map[string]knowledge.State{
		"s1": {User: knowledge.UserProfile{PreferredMadhab: "الحنفي"}},
	}}
	tool := NewProfileTool(fa)
	assert.Equal(t, "sharia_profile", tool.Definition().Name)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{"session_id": "s1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(result), `"preferred_madhab": "الحنفي"`)

	result, err = tool.Handle(context.Background(), callRequest(map[string]any{"session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = tool.Handle(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNewRegistersTools(t *testing.T) {
	s := New(Deps{Assistant: &fakeAssistant{}, Version: "test"})
	tools := s.ListTools()
	assert.Contains(t, tools, "sharia_ask")
	assert.Contains(t, tools, "sharia_profile")
}
