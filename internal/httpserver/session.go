package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionHeader = "X-Cart-Session"
	sessionCtxKey = "cartSession"
)

// sessionMiddleware resolves the caller's cart session, issuing one when the header is
// absent. The session id is echoed back on every response.
func sessionMiddleware(sessions sessionService, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(sessionHeader)
		var (
			id  string
			err error
		)
		if raw == "" {
			id, err = sessions.Issue()
			if err != nil {
				logger.Errorw("session: issue failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			logger.Debugw("session: issued", "session", id)
		} else {
			id, err = sessions.Normalize(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		c.Set(sessionCtxKey, id)
		c.Header(sessionHeader, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}
