package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/http/response"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

type EventsHandler struct {
	Log       *logger.Logger
	Hub       *realtime.SSEHub
	Assistant Assistant
}

func NewEventsHandler(log *logger.Logger, hub *realtime.SSEHub, a Assistant) *EventsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EventsHandler{Log: log.With("handler", "EventsHandler"), Hub: hub, Assistant: a}
}

// GET /api/sessions/:id/events streams the session's realtime channel until
// the client disconnects.
func (h *EventsHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	if !h.Assistant.HasSession(id) {
		response.RespondError(c, mapAssistantError(orchestrator.ErrSessionNotFound))
		return
	}
	client := h.Hub.NewSSEClient(id)
	client.Logger = h.Log.With("sse_client_id", client.ID.String(), "session_id", id)
	h.Hub.AddChannel(client, id)
	client.Logger.Debug("SSE stream open")

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	client.Logger.Debug("SSE stream closed")
}
