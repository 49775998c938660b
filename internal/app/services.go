package app

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/llm"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
	"github.com/yungbote/shariabridge-backend/internal/config"
	"github.com/yungbote/shariabridge-backend/internal/inference/router"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

func wireAssistant(ctx context.Context, cfg *config.Config, log *logger.Logger, events realtime.Emitter) (*orchestrator.Orchestrator, error) {
	log.Info("Wiring model router...", "models", len(cfg.Models), "assistant_model", cfg.Assistant.Model)
	r, err := router.New(ctx, cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("init model router: %w", err)
	}
	model, err := llm.NewRouted(r, cfg.Assistant.Model)
	if err != nil {
		return nil, fmt.Errorf("init assistant model: %w", err)
	}

	catalog, err := wireCatalog(cfg.Search, log)
	if err != nil {
		return nil, err
	}
	retriever, err := wireRetriever(cfg.Search)
	if err != nil {
		return nil, err
	}

	log.Info("Wiring assistant...", "retriever", cfg.Search.Retriever)
	augmenter, err := search.New(search.Deps{Model: model, Retriever: retriever, Catalog: &catalog, Log: log})
	if err != nil {
		return nil, err
	}
	pipeline, err := reasoning.New(reasoning.Deps{Model: model, Log: log})
	if err != nil {
		return nil, err
	}

	var policy knowledge.Policy = knowledge.Unbounded()
	if cfg.Assistant.MaxHistory > 0 || cfg.Assistant.MaxTopics > 0 {
		policy = knowledge.Bounded{MaxHistory: cfg.Assistant.MaxHistory, MaxTopics: cfg.Assistant.MaxTopics}
	}

	return orchestrator.New(orchestrator.Deps{
		Model:         model,
		Search:        augmenter,
		Reasoning:     pipeline,
		Classifier:    classifier.Heuristic{},
		Events:        events,
		Policy:        policy,
		HistoryWindow: cfg.Assistant.HistoryWindow,
		Log:           log,
	})
}

// wireCatalog prefers the configured file over the embedded catalog.
func wireCatalog(cfg config.SearchConfig, log *logger.Logger) (search.Catalog, error) {
	if cfg.CatalogPath == "" {
		return search.DefaultCatalog(log), nil
	}
	data, err := os.ReadFile(cfg.CatalogPath)
	if err != nil {
		return search.Catalog{}, fmt.Errorf("read search catalog: %w", err)
	}
	c, err := search.ParseCatalog(data)
	if err != nil {
		return search.Catalog{}, fmt.Errorf("parse search catalog %s: %w", cfg.CatalogPath, err)
	}
	return c, nil
}

func wireRetriever(cfg config.SearchConfig) (search.Retriever, error) {
	switch cfg.Retriever {
	case "brave":
		b, err := search.NewBrave(search.BraveConfig{
			APIKey:      cfg.BraveAPIKey,
			BaseURL:     cfg.BraveBaseURL,
			MinInterval: cfg.MinInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("init brave retriever: %w", err)
		}
		return b, nil
	default:
		return search.Noop{}, nil
	}
}
