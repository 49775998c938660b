package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/http/response"
	"github.com/yungbote/shariabridge-backend/internal/platform/apierr"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

// Assistant is the part of the orchestrator the HTTP surface drives.
type Assistant interface {
	CreateSession() string
	CloseSession(ctx context.Context, id string) error
	HasSession(id string) bool
	Knowledge(id string) (knowledge.State, error)
	Ask(ctx context.Context, sessionID string, req orchestrator.Request) (orchestrator.Reply, error)
}

// Toggles are applied when a message request omits search or reasoning.
type Toggles struct {
	Search    bool
	Reasoning bool
}

type SessionHandler struct {
	Log       *logger.Logger
	Assistant Assistant
	Defaults  Toggles
}

func NewSessionHandler(log *logger.Logger, a Assistant, defaults Toggles) *SessionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{Log: log.With("handler", "SessionHandler"), Assistant: a, Defaults: defaults}
}

type messageRequest struct {
	Message   string `json:"message"`
	Search    *bool  `json:"search"`
	Reasoning *bool  `json:"reasoning"`
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	id := h.Assistant.CreateSession()
	response.RespondCreated(c, gin.H{"session_id": id})
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.Assistant.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondError(c, mapAssistantError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/sessions/:id/knowledge
func (h *SessionHandler) Knowledge(c *gin.Context) {
	st, err := h.Assistant.Knowledge(c.Param("id"))
	if err != nil {
		response.RespondError(c, mapAssistantError(err))
		return
	}
	response.RespondOK(c, st)
}

// POST /api/sessions/:id/messages
func (h *SessionHandler) Message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	in := orchestrator.Request{Message: req.Message, Search: h.Defaults.Search, Reasoning: h.Defaults.Reasoning}
	if req.Search != nil {
		in.Search = *req.Search
	}
	if req.Reasoning != nil {
		in.Reasoning = *req.Reasoning
	}

	reply, err := h.Assistant.Ask(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.RespondError(c, mapAssistantError(err))
		return
	}
	response.RespondOK(c, reply)
}

func mapAssistantError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		return apierr.New(http.StatusBadRequest, "empty_message", err)
	case errors.Is(err, orchestrator.ErrSessionNotFound):
		return apierr.New(http.StatusNotFound, "session_not_found", err)
	default:
		return apierr.From(err, "assistant_failed")
	}
}
