package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shariabridge-backend/internal/platform/ctxutil"
)

// AttachSession records the :id route parameter as the session the request
// acts on. The realtime channel of a session is its id.
func AttachSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id != "" {
			ctx := ctxutil.WithSessionData(c.Request.Context(), &ctxutil.SessionData{SessionID: id, Channel: id})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
