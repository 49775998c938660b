package realtime

import (
	"context"
	"sync"
)

type Emitter interface {
	Emit(ctx context.Context, msg SSEMessage)
}

type HubEmitter struct{ Hub *SSEHub }

func (e *HubEmitter) Emit(_ context.Context, msg SSEMessage) {
	e.Hub.Broadcast(msg)
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, SSEMessage) {}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, msg SSEMessage)

func (f EmitterFunc) Emit(ctx context.Context, msg SSEMessage) { f(ctx, msg) }

// Fanout emits to every non-nil emitter in order.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, msg SSEMessage) {
	for _, e := range f {
		if e != nil {
			e.Emit(ctx, msg)
		}
	}
}

// Recorder keeps every emitted message in order.
type Recorder struct {
	mu   sync.Mutex
	msgs []SSEMessage
}

func (r *Recorder) Emit(_ context.Context, msg SSEMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []SSEMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SSEMessage(nil), r.msgs...)
}

// Events returns the event names seen on channel.
func (r *Recorder) Events(channel string) []SSEEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SSEEvent
	for _, m := range r.msgs {
		if m.Channel == channel {
			out = append(out, m.Event)
		}
	}
	return out
}
