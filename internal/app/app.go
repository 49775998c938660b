// Package app is the composition root: it builds the assistant and its
// surfaces from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/config"
	apphttp "github.com/yungbote/shariabridge-backend/internal/http"
	"github.com/yungbote/shariabridge-backend/internal/observability"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
	"github.com/yungbote/shariabridge-backend/internal/realtime/bus"
)

type App struct {
	Log       *logger.Logger
	Cfg       *config.Config
	Assistant *orchestrator.Orchestrator
	SSEHub    *realtime.SSEHub
	Bus       bus.Bus
	Server    *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

type Options struct {
	Version string
	// Events receives every realtime message in addition to the bus, for
	// terminal progress output.
	Events realtime.Emitter
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if log == nil {
		log = logger.Nop()
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv("shariabridge", cfg.Env, opts.Version))

	log.Info("Wiring realtime...", "bus", cfg.Realtime.Bus)
	hub := realtime.NewSSEHub(log)
	b, err := bus.New(ctx, bus.Config{Kind: cfg.Realtime.Bus, Addr: cfg.Realtime.RedisAddr, Channel: cfg.Realtime.RedisChannel}, log)
	if err != nil {
		return nil, fmt.Errorf("init realtime bus: %w", err)
	}
	events := realtime.Fanout{&bus.Emitter{Bus: b, Log: log}, opts.Events}

	assistant, err := wireAssistant(ctx, cfg, log, events)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	handlers := wireHandlers(log, cfg, assistant, hub)
	server := apphttp.NewServer(cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout, apphttp.RouterConfig{
		Log:            log,
		ServiceName:    "shariabridge",
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		HealthHandler:  handlers.Health,
		SessionHandler: handlers.Session,
		EventsHandler:  handlers.Events,
	})
	server.OnShutdown(hub.CloseAll)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Assistant:    assistant,
		SSEHub:       hub,
		Bus:          b,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start connects the bus to the local hub. Serve calls it; terminal commands
// that never stream events can skip it.
func (a *App) Start(ctx context.Context) error {
	if a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start realtime forwarder: %w", err)
	}
	return nil
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.Server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Assistant.Close()
	if err := a.Bus.Close(); err != nil {
		a.Log.Warn("realtime bus close failed", "error", err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
