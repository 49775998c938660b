package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

// memoryBus delivers in-process, synchronously and in publish order.
type memoryBus struct {
	mu       sync.RWMutex
	handlers map[int]func(realtime.SSEMessage)
	next     int
	closed   bool
}

func NewMemoryBus() Bus {
	return &memoryBus{handlers: map[int]func(realtime.SSEMessage){}}
}

func (b *memoryBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.New("memory bus closed")
	}
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("memory bus closed")
	}
	id := b.next
	b.next++
	b.handlers[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = map[int]func(realtime.SSEMessage){}
	return nil
}
