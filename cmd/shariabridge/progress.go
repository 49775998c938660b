package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
	"github.com/yungbote/shariabridge-backend/internal/termui"
)

// progressLine formats search progress and the newest reasoning layer title.
// Other events have no progress line.
func progressLine(r *termui.Renderer, msg realtime.SSEMessage) (string, bool) {
	switch msg.Event {
	case realtime.SSEEventSearchProgress:
		prog, ok := msg.Data.(search.Progress)
		if !ok {
			return "", false
		}
		return r.Progress(prog), true
	case realtime.SSEEventReasoningLayers:
		data, _ := msg.Data.(map[string]any)
		layers, _ := data["layers"].([]reasoning.Layer)
		if len(layers) == 0 {
			return "", false
		}
		return r.Styles().Progress.Render("▸ " + layers[len(layers)-1].Title), true
	}
	return "", false
}

// progressPrinter writes progress lines as the realtime events arrive.
// Search and reasoning emit from different goroutines.
type progressPrinter struct {
	mu sync.Mutex
	w  io.Writer
	r  *termui.Renderer
}

func newProgressPrinter(w io.Writer, r *termui.Renderer) *progressPrinter {
	return &progressPrinter{w: w, r: r}
}

func (p *progressPrinter) Emit(_ context.Context, msg realtime.SSEMessage) {
	line, ok := progressLine(p.r, msg)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// programEvents feeds realtime events into the running chat program. Events
// arriving while no program is attached are dropped.
type programEvents struct {
	r  *termui.Renderer
	mu sync.RWMutex
	p  *tea.Program
}

func (e *programEvents) attach(p *tea.Program) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.p = p
}

func (e *programEvents) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.RLock()
	p := e.p
	e.mu.RUnlock()
	if p == nil {
		return
	}
	if msg.Event == realtime.SSEEventReplyDelta {
		data, _ := msg.Data.(map[string]any)
		if delta, _ := data["delta"].(string); delta != "" {
			p.Send(deltaMsg(delta))
		}
		return
	}
	if line, ok := progressLine(e.r, msg); ok {
		p.Send(statusMsg(line))
	}
}
