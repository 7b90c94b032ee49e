package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"accessworld-server-go/internal/domain/auth"
	"accessworld-server-go/internal/domain/pipeline"
	"accessworld-server-go/internal/utils"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	requestIDKey = "request_id"
	// ClientIDKey holds the authenticated client in the gin context.
	ClientIDKey = "client_id"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(pipeline.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AuthMiddleware 校验 Bearer token；WebSocket 客户端可以通过 ?token= 传递
func AuthMiddleware(tokens *auth.AuthToken, logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		claims, err := tokens.VerifyToken(token)
		if err != nil {
			logger.WarnTag("HTTP", "认证失败 path=%s: %v", c.Request.URL.Path, err)
			RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		c.Set(ClientIDKey, claims.ClientID)
		c.Next()
	}
}
