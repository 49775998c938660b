package engine

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// JSONSchema asks the engine for structured output. It is a hint: callers
// decode the reply themselves and recover from malformed JSON.
type JSONSchema struct {
	Name   string
	Schema map[string]any
}

type GenerateOptions struct {
	Temperature float64
	JSONSchema  *JSONSchema
}

// Engine is a chat-completion backend. Implementations must be safe for
// concurrent use: search and reasoning stages call the same engine in parallel.
// Every call is a single upstream attempt.
type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
	StreamText(ctx context.Context, model string, messages []Message, opts GenerateOptions, onDelta func(delta string)) (full string, err error)
}
