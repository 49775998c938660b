package realtime

type SSEEvent string

const (
	SSEEventSearchProgress  SSEEvent = "search.progress"
	SSEEventSearchDone      SSEEvent = "search.done"
	SSEEventReasoningLayers SSEEvent = "reasoning.layers"
	SSEEventReplyDelta      SSEEvent = "reply.delta"
	SSEEventTurnDone        SSEEvent = "turn.done"
	SSEEventImageRequested  SSEEvent = "image.requested"
	SSEEventSessionClosed   SSEEvent = "session.closed"
)

// SSEMessage is addressed to a channel; sessions use their id as channel.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
