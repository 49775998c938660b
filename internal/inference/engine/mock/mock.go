package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
)

// Rule answers any request whose system prompt contains Match. An empty Match
// applies to requests without a system message.
type Rule struct {
	Match string
	Reply string
	Err   error
}

// Engine is a deterministic in-process engine. Without rules it echoes the
// last user message, and for schema requests it returns an empty object so
// callers exercise their field-by-field fallbacks.
type Engine struct {
	mu    sync.Mutex
	rules []Rule
	calls []Call
}

type Call struct {
	Model    string
	Messages []engine.Message
	Schema   string
}

func New(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Calls returns the requests seen so far, in arrival order.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	call := Call{Model: model, Messages: append([]engine.Message(nil), messages...)}
	if opts.JSONSchema != nil {
		call.Schema = opts.JSONSchema.Name
	}
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()

	system := systemPrompt(messages)
	for _, r := range e.rules {
		if (r.Match == "" && system == "") || (r.Match != "" && strings.Contains(system, r.Match)) {
			if r.Err != nil {
				return "", r.Err
			}
			return r.Reply, nil
		}
	}

	if opts.JSONSchema != nil {
		b, _ := json.Marshal(map[string]any{})
		return string(b), nil
	}

	user := lastUser(messages)
	if strings.TrimSpace(user) == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock: %s", user), nil
}

func (e *Engine) StreamText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions, onDelta func(delta string)) (string, error) {
	full, err := e.GenerateText(ctx, model, messages, opts)
	if err != nil {
		return "", err
	}
	if onDelta == nil {
		return full, nil
	}
	// chunk on rune boundaries so Arabic text is never split mid-character
	runes := []rune(full)
	const chunk = 16
	for i := 0; i < len(runes); i += chunk {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		end := i + chunk
		if end > len(runes) {
			end = len(runes)
		}
		onDelta(string(runes[i:end]))
	}
	return full, nil
}

func systemPrompt(messages []engine.Message) string {
	for _, m := range messages {
		if strings.EqualFold(m.Role, engine.RoleSystem) {
			return m.Content
		}
	}
	return ""
}

func lastUser(messages []engine.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, engine.RoleUser) {
			return messages[i].Content
		}
	}
	return ""
}
