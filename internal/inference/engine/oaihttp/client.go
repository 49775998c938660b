// Package oaihttp talks to OpenAI-compatible chat completion servers (vLLM,
// SGLang, llama.cpp, hosted APIs).
package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/shariabridge-backend/internal/inference/config"
	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
)

const defaultChatPath = "/v1/chat/completions"

var errNoMessages = errors.New("oai_http: no messages")

type Engine struct {
	baseURL  string
	chatPath string
	apiKey   string

	timeout       time.Duration
	streamTimeout time.Duration

	schemaMode     string
	schemaMaxBytes int

	httpClient *http.Client
}

func New(cfg config.EngineConfig) (*Engine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}
	e := &Engine{
		baseURL:        baseURL,
		chatPath:       strings.TrimSpace(cfg.ChatCompletionsPath),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		timeout:        cfg.Timeout,
		streamTimeout:  cfg.StreamTimeout,
		schemaMode:     strings.ToLower(strings.TrimSpace(cfg.JSONSchema.Mode)),
		schemaMaxBytes: cfg.JSONSchema.MaxPromptBytes,
		httpClient: &http.Client{Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		}},
	}
	if e.chatPath == "" {
		e.chatPath = defaultChatPath
	}
	if e.timeout <= 0 {
		e.timeout = 60 * time.Second
	}
	if e.schemaMode == "" {
		e.schemaMode = "auto"
	}
	if e.schemaMaxBytes <= 0 {
		e.schemaMaxBytes = 64 << 10
	}
	return e, nil
}

// NewWithHTTPClient swaps the transport, which lets tests run without a network.
func NewWithHTTPClient(cfg config.EngineConfig, httpClient *http.Client) (*Engine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		e.httpClient = httpClient
	}
	return e, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`

	// vLLM/SGLang guided decoding extensions.
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	GuidedJSON     any            `json:"guided_json,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
			// Reasoning parsers may leave Content empty and put everything here.
			ReasoningContent string `json:"reasoning_content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	body, err := e.request(model, messages, opts, false)
	if err != nil {
		return "", err
	}
	resp, err := e.post(ctx, e.timeout, body, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oai_http: decode response: %w", err)
	}
	for _, c := range out.Choices {
		for _, candidate := range []string{c.Message.Content, c.Text, c.Message.ReasoningContent} {
			if text := StripThinkBlocks(candidate); text != "" {
				return text, nil
			}
		}
	}
	return "", errors.New("oai_http: empty completion")
}

// StreamText forwards content deltas as they arrive. Reasoning blocks are
// withheld from onDelta and stripped from the returned text.
func (e *Engine) StreamText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions, onDelta func(delta string)) (string, error) {
	body, err := e.request(model, messages, opts, true)
	if err != nil {
		return "", err
	}
	resp, err := e.post(ctx, e.streamTimeout, body, "text/event-stream")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	visible := &thinkFilter{emit: onDelta}
	err = streamSSE(resp.Body, func(_ string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			return nil
		}
		var chunk chatChunk
		if json.Unmarshal([]byte(data), &chunk) != nil {
			return nil
		}
		if chunk.Error != nil {
			b, _ := json.Marshal(chunk.Error)
			return fmt.Errorf("oai_http: upstream stream error: %s", b)
		}
		for _, c := range chunk.Choices {
			delta := c.Delta.Content
			if delta == "" {
				delta = c.Text
			}
			visible.Write(delta)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return visible.Text(), nil
}

func (e *Engine) request(model string, messages []engine.Message, opts engine.GenerateOptions, stream bool) (chatRequest, error) {
	req := chatRequest{
		Model:       model,
		Messages:    toChatMessages(messages),
		Temperature: opts.Temperature,
		Stream:      stream,
	}
	if len(req.Messages) == 0 {
		return req, errNoMessages
	}
	if opts.JSONSchema == nil {
		return req, nil
	}
	if (e.schemaMode == "guided_json" || e.schemaMode == "auto") && opts.JSONSchema.Schema != nil {
		req.ResponseFormat = map[string]any{"type": "json_object"}
		req.GuidedJSON = opts.JSONSchema.Schema
	}
	if e.schemaMode == "prompt" || e.schemaMode == "auto" {
		req.Messages = append(req.Messages, chatMessage{Role: engine.RoleSystem, Content: e.schemaInstruction(opts.JSONSchema)})
	}
	return req, nil
}

func (e *Engine) schemaInstruction(s *engine.JSONSchema) string {
	var b strings.Builder
	b.WriteString("Return ONLY a valid JSON value that conforms to the provided JSON Schema. Do not include markdown or commentary.")
	if name := strings.TrimSpace(s.Name); name != "" {
		b.WriteString("\nSchema name: ")
		b.WriteString(name)
	}
	if s.Schema != nil {
		if raw, err := json.Marshal(s.Schema); err == nil && len(raw) <= e.schemaMaxBytes {
			b.WriteString("\nSchema:\n")
			b.Write(raw)
		}
	}
	return b.String()
}

// toChatMessages drops messages without a role or with blank content. Content
// is sent byte for byte.
func toChatMessages(messages []engine.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		if role == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: m.Content})
	}
	return out
}

// post sends body to the chat endpoint. A non-2xx status becomes *HTTPError;
// on success the caller owns the response body.
func (e *Engine) post(ctx context.Context, timeout time.Duration, body chatRequest, accept string) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+e.chatPath, &buf)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		cancel()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the request timeout once the body has been consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
