package oaihttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/shariabridge-backend/internal/inference/config"
	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func chatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
	return string(b)
}

func testEngine(t *testing.T, cfg config.EngineConfig, rt roundTripperFunc) *Engine {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://upstream"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	e, err := NewWithHTTPClient(cfg, &http.Client{Transport: rt})
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return e
}

func decodeRequest(t *testing.T, req *http.Request) chatRequest {
	t.Helper()
	var payload chatRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("decode req: %v", err)
	}
	return payload
}

func TestGenerateText_JSONSchemaAutoSendsGuidedAndPrompt(t *testing.T) {
	var calls int32
	cfg := config.EngineConfig{Type: "oai_http", JSONSchema: config.JSONSchemaConfig{Mode: "auto", MaxPromptBytes: 4096}}
	e := testEngine(t, cfg, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		payload := decodeRequest(t, req)
		if payload.GuidedJSON == nil || payload.ResponseFormat["type"] != "json_object" {
			t.Fatalf("guided fields missing: %+v", payload)
		}
		if len(payload.Messages) != 3 || !strings.Contains(payload.Messages[2].Content, "Schema name: synthesis") {
			t.Fatalf("messages=%+v", payload.Messages)
		}
		return jsonResponse(http.StatusOK, chatBody("not json")), nil
	})

	out, err := e.GenerateText(context.Background(), "upstream-model", []engine.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "user"},
	}, engine.GenerateOptions{
		JSONSchema: &engine.JSONSchema{Name: "synthesis", Schema: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	// Malformed JSON is the caller's to recover from.
	if out != "not json" {
		t.Fatalf("out=%q", out)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls=%d", got)
	}
}

func TestGenerateText_SchemaModes(t *testing.T) {
	cases := []struct {
		mode       string
		wantGuided bool
		wantMsgs   int
	}{
		{"guided_json", true, 1},
		{"prompt", false, 2},
		{"none", false, 1},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			e := testEngine(t, config.EngineConfig{Type: "oai_http", JSONSchema: config.JSONSchemaConfig{Mode: tc.mode}}, func(req *http.Request) (*http.Response, error) {
				payload := decodeRequest(t, req)
				if (payload.GuidedJSON != nil) != tc.wantGuided || len(payload.Messages) != tc.wantMsgs {
					t.Fatalf("payload=%+v", payload)
				}
				return jsonResponse(http.StatusOK, chatBody("{}")), nil
			})
			_, err := e.GenerateText(context.Background(), "m", []engine.Message{{Role: "user", Content: "q"}}, engine.GenerateOptions{
				JSONSchema: &engine.JSONSchema{Name: "s", Schema: map[string]any{"type": "object"}},
			})
			if err != nil {
				t.Fatalf("GenerateText: %v", err)
			}
		})
	}
}

func TestGenerateText_UpstreamErrorIsSingleAttempt(t *testing.T) {
	var calls int32
	e := testEngine(t, config.EngineConfig{Type: "oai_http"}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusBadGateway, `{"error":"down"}`), nil
	})

	_, err := e.GenerateText(context.Background(), "m", []engine.Message{{Role: "user", Content: "q"}}, engine.GenerateOptions{
		JSONSchema: &engine.JSONSchema{Name: "synthesis", Schema: map[string]any{"type": "object"}},
	})
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err=%v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls=%d", got)
	}
}

func TestGenerateText_SendsContentVerbatim(t *testing.T) {
	e := testEngine(t, config.EngineConfig{Type: "oai_http"}, func(req *http.Request) (*http.Response, error) {
		payload := decodeRequest(t, req)
		if len(payload.Messages) != 2 {
			t.Fatalf("blank message not dropped: %+v", payload.Messages)
		}
		if payload.Messages[0].Content != "  سؤال مع مسافات\n" {
			t.Fatalf("content=%q", payload.Messages[0].Content)
		}
		return jsonResponse(http.StatusOK, chatBody("ok")), nil
	})
	_, err := e.GenerateText(context.Background(), "m", []engine.Message{
		{Role: "user", Content: "  سؤال مع مسافات\n"},
		{Role: "assistant", Content: "   "},
		{Role: "user", Content: "تابع"},
	}, engine.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
}

func TestGenerateText_StripsThinkingAndFallsBackToReasoning(t *testing.T) {
	bodies := []string{
		chatBody("<think>التفكير الداخلي</think>\nالجواب"),
		`{"choices":[{"message":{"content":"","reasoning_content":"نص من الاستدلال"}}]}`,
	}
	var n int32
	e := testEngine(t, config.EngineConfig{Type: "oai_http"}, func(req *http.Request) (*http.Response, error) {
		i := atomic.AddInt32(&n, 1) - 1
		return jsonResponse(http.StatusOK, bodies[i]), nil
	})

	msgs := []engine.Message{{Role: "user", Content: "q"}}
	out, err := e.GenerateText(context.Background(), "m", msgs, engine.GenerateOptions{})
	if err != nil || out != "الجواب" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	out, err = e.GenerateText(context.Background(), "m", msgs, engine.GenerateOptions{})
	if err != nil || out != "نص من الاستدلال" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestStripThinkBlocksUnterminated(t *testing.T) {
	if got := StripThinkBlocks("الجواب <think>لم ينته"); got != "الجواب" {
		t.Fatalf("got=%q", got)
	}
}

func TestStreamText(t *testing.T) {
	cfg := config.EngineConfig{Type: "oai_http", StreamTimeout: 2 * time.Second}
	e := testEngine(t, cfg, func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.Header.Get("Accept"), "text/event-stream") {
			t.Fatalf("accept=%q", req.Header.Get("Accept"))
		}
		sse := strings.Join([]string{
			": keep-alive",
			`data: {"choices":[{"delta":{"content":"المساعد"}}]}`,
			"",
			`data: {"choices":[{"delta":{"content":" الشرعي"}}]}`,
			"",
			"data: [DONE]",
			"",
			"",
		}, "\n")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader(sse)),
		}, nil
	})

	var deltas strings.Builder
	full, err := e.StreamText(context.Background(), "m", []engine.Message{{Role: "user", Content: "hi"}}, engine.GenerateOptions{}, func(delta string) {
		deltas.WriteString(delta)
	})
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	if full != "المساعد الشرعي" || deltas.String() != full {
		t.Fatalf("full=%q deltas=%q", full, deltas.String())
	}
}

func TestStreamText_WithholdsThinkBlocks(t *testing.T) {
	chunks := []string{"<thi", "nk>خطة", " داخلية</think>", "الجو", "اب <", "b>"}
	e := testEngine(t, config.EngineConfig{Type: "oai_http"}, func(req *http.Request) (*http.Response, error) {
		var lines []string
		for _, c := range chunks {
			b, _ := json.Marshal(map[string]any{"choices": []any{map[string]any{"delta": map[string]any{"content": c}}}})
			lines = append(lines, "data: "+string(b), "")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		}, nil
	})

	var deltas []string
	full, err := e.StreamText(context.Background(), "m", []engine.Message{{Role: "user", Content: "hi"}}, engine.GenerateOptions{}, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	if full != "الجواب <b>" {
		t.Fatalf("full=%q", full)
	}
	joined := strings.Join(deltas, "")
	if strings.Contains(joined, "خطة") || !strings.HasPrefix(full, joined) {
		t.Fatalf("deltas=%q", deltas)
	}
}

func TestStreamText_UpstreamError(t *testing.T) {
	e := testEngine(t, config.EngineConfig{Type: "oai_http"}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`), nil
	})
	_, err := e.StreamText(context.Background(), "m", []engine.Message{{Role: "user", Content: "hi"}}, engine.GenerateOptions{}, nil)
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err=%v", err)
	}
}
