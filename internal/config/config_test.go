package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Assistant.HistoryWindow != 15 || !cfg.Assistant.SearchDefault {
		t.Fatalf("defaults = %+v", cfg)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Engine.Type != "mock" || cfg.Assistant.Model != DefaultModelID {
		t.Fatalf("default model = %+v", cfg.Models)
	}
	if cfg.Search.Retriever != "noop" || cfg.Realtime.Bus != "memory" {
		t.Fatalf("search/realtime = %+v %+v", cfg.Search, cfg.Realtime)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
env: prod
http:
  addr: ":9000"
  shutdown_timeout: 5s
assistant:
  model: qwen
  history_window: 9
models:
  - id: qwen
    engine:
      type: openai_http
      base_url: http://vllm:8000/
search:
  retriever: brave
  brave_api_key: key
  min_interval: 2s
`)
	t.Setenv("SB_HTTP_ADDR", ":7000")
	t.Setenv("LOG_MODE", "prod")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":7000" {
		t.Fatalf("env override ignored: %q", cfg.HTTP.Addr)
	}
	if cfg.Log.Mode != "prod" || cfg.Env != "prod" {
		t.Fatalf("log/env = %q %q", cfg.Log.Mode, cfg.Env)
	}
	if cfg.HTTP.ShutdownTimeout != 5*time.Second || cfg.Search.MinInterval != 2*time.Second {
		t.Fatalf("durations = %v %v", cfg.HTTP.ShutdownTimeout, cfg.Search.MinInterval)
	}
	if cfg.Models[0].Engine.Type != "oai_http" || cfg.Models[0].Engine.BaseURL != "http://vllm:8000" {
		t.Fatalf("model not normalized: %+v", cfg.Models[0])
	}
	if cfg.Assistant.HistoryWindow != 9 {
		t.Fatalf("history window = %d", cfg.Assistant.HistoryWindow)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for a missing explicit file")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown model", "assistant:\n  model: other\n", "not a configured model"},
		{"brave without key", "search:\n  retriever: brave\n", "brave_api_key"},
		{"bad retriever", "search:\n  retriever: google\n", "unsupported search.retriever"},
		{"redis without addr", "realtime:\n  bus: redis\n", "redis_addr"},
		{"bad bus", "realtime:\n  bus: kafka\n", "unsupported realtime.bus"},
		{"bad engine", "models:\n  - id: sharia-mock\n    engine:\n      type: tpu\n", "unsupported engine"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}
