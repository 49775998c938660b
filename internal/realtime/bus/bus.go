// Package bus carries realtime messages between processes so any instance
// can serve a session's event stream.
package bus

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type Config struct {
	Kind    string // memory | redis
	Addr    string
	Channel string
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (Bus, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "memory":
		return NewMemoryBus(), nil
	case "redis":
		return NewRedisBus(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown realtime bus %q", cfg.Kind)
	}
}

// Emitter publishes through a Bus; the forwarder delivers to the local hub.
type Emitter struct {
	Bus Bus
	Log *logger.Logger
}

func (e *Emitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("realtime publish failed", "event", msg.Event, "error", err)
	}
}
