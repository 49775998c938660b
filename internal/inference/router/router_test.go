package router

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/shariabridge-backend/internal/inference/config"
)

func TestNewBuildsRoutes(t *testing.T) {
	models := []config.ModelConfig{
		{ID: "mock-1", Engine: config.EngineConfig{Type: "mock"}},
		{ID: "qwen", UpstreamModel: "Qwen/Qwen2.5-72B-Instruct", Engine: config.EngineConfig{Type: "oai_http", BaseURL: "http://vllm:8000"}},
	}
	r, err := New(context.Background(), models)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"mock-1", "qwen"}, r.ListModels()); diff != "" {
		t.Fatalf("models (-want +got):\n%s", diff)
	}
	route, ok := r.RouteForModel(" qwen ")
	if !ok || route.UpstreamModel != "Qwen/Qwen2.5-72B-Instruct" || route.Engine == nil {
		t.Fatalf("route=%+v ok=%v", route, ok)
	}
	if _, ok := r.RouteForModel("missing"); ok {
		t.Fatalf("unexpected route")
	}
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := New(context.Background(), []config.ModelConfig{{ID: "x", Engine: config.EngineConfig{Type: "tpu"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
}
