package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/shariabridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/shariabridge-backend/internal/http/middleware"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	HealthHandler  *httpH.HealthHandler
	SessionHandler *httpH.SessionHandler
	EventsHandler  *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	service := cfg.ServiceName
	if service == "" {
		service = "shariabridge"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(service))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
		}
	}

	session := api.Group("/sessions/:id")
	{
		session.Use(httpMW.AttachSession())

		if cfg.SessionHandler != nil {
			session.DELETE("", cfg.SessionHandler.Delete)
			session.GET("/knowledge", cfg.SessionHandler.Knowledge)
			session.POST("/messages", cfg.SessionHandler.Message)
		}

		// Realtime (SSE)
		if cfg.EventsHandler != nil {
			session.GET("/events", cfg.EventsHandler.Stream)
		}
	}

	return r
}
