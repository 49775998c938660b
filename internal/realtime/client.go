package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

type SSEClient struct {
	ID        uuid.UUID
	SessionID string
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	closed    bool
	Logger    *logger.Logger
}
