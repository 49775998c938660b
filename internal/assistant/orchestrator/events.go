package orchestrator

import (
	"context"

	"github.com/yungbote/shariabridge-backend/internal/assistant/postprocess"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

// notifier publishes turn progress on the session's channel. Events are for
// display only; nothing waits on them.
type notifier struct {
	emit realtime.Emitter
}

func (n notifier) send(ctx context.Context, sessionID string, ev realtime.SSEEvent, data any) {
	if n.emit == nil || sessionID == "" {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{Channel: sessionID, Event: ev, Data: data})
}

func (n notifier) SearchProgress(ctx context.Context, sessionID string, p search.Progress) {
	n.send(ctx, sessionID, realtime.SSEEventSearchProgress, p)
}

func (n notifier) SearchDone(ctx context.Context, sessionID string, r search.Result) {
	n.send(ctx, sessionID, realtime.SSEEventSearchDone, r)
}

func (n notifier) ReasoningLayers(ctx context.Context, sessionID string, layers []reasoning.Layer) {
	n.send(ctx, sessionID, realtime.SSEEventReasoningLayers, map[string]any{"layers": layers})
}

// ReplyDelta carries raw model text as it streams. Image directives and source
// tags are rewritten only in turn.done, which supersedes the deltas.
func (n notifier) ReplyDelta(ctx context.Context, sessionID string, delta string) {
	n.send(ctx, sessionID, realtime.SSEEventReplyDelta, map[string]any{"delta": delta})
}

func (n notifier) TurnDone(ctx context.Context, sessionID string, r Reply) {
	n.send(ctx, sessionID, realtime.SSEEventTurnDone, map[string]any{
		"reply":            r.Text,
		"degraded":         r.Degraded,
		"special_elements": r.SpecialElements,
	})
}

func (n notifier) SessionClosed(ctx context.Context, sessionID string) {
	n.send(ctx, sessionID, realtime.SSEEventSessionClosed, nil)
}

// ImageRequests is the default element handler: it announces each image
// directive so a rendering client can fetch or generate the picture.
type ImageRequests struct {
	Events realtime.Emitter
}

func (h ImageRequests) Handle(ctx context.Context, sessionID string, elements []postprocess.Element) {
	for _, el := range elements {
		if el.Type != postprocess.ElementImage {
			continue
		}
		notifier{emit: h.Events}.send(ctx, sessionID, realtime.SSEEventImageRequested, map[string]any{
			"prompt":       el.Prompt,
			"aspect_ratio": "16:9",
		})
	}
}
