package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/shariabridge-backend/internal/inference/config"
	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
)

// Engine serves chat requests through the Gemini API.
type Engine struct {
	client *genai.Client
}

func New(ctx context.Context, cfg config.EngineConfig) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api_key required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return &Engine{client: client}, nil
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	contents, gcfg, err := buildRequest(messages, opts)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Models.GenerateContent(ctx, model, contents, gcfg)
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("genai: empty completion")
	}
	return text, nil
}

func (e *Engine) StreamText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions, onDelta func(delta string)) (string, error) {
	contents, gcfg, err := buildRequest(messages, opts)
	if err != nil {
		return "", err
	}
	var full strings.Builder
	for resp, err := range e.client.Models.GenerateContentStream(ctx, model, contents, gcfg) {
		if err != nil {
			return "", fmt.Errorf("genai: stream: %w", err)
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return full.String(), nil
}

// buildRequest folds system messages into the system instruction and maps the
// remaining turns onto Gemini's user/model roles.
func buildRequest(messages []engine.Message, opts engine.GenerateOptions) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		text := m.Content
		if strings.TrimSpace(text) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case engine.RoleSystem:
			system = append(system, text)
		case engine.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("genai: no messages")
	}

	temp := float32(opts.Temperature)
	gcfg := &genai.GenerateContentConfig{Temperature: &temp}
	if len(system) > 0 {
		gcfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if opts.JSONSchema != nil {
		gcfg.ResponseMIMEType = "application/json"
		if opts.JSONSchema.Schema != nil {
			gcfg.ResponseJsonSchema = opts.JSONSchema.Schema
		}
	}
	return contents, gcfg, nil
}
