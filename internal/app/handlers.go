package app

import (
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/config"
	httpH "github.com/yungbote/shariabridge-backend/internal/http/handlers"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Session *httpH.SessionHandler
	Events  *httpH.EventsHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, assistant *orchestrator.Orchestrator, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Session: httpH.NewSessionHandler(log, assistant, httpH.Toggles{
			Search:    cfg.Assistant.SearchDefault,
			Reasoning: cfg.Assistant.ReasoningDefault,
		}),
		Events: httpH.NewEventsHandler(log, hub, assistant),
	}
}
