package middlewares

import (
	"strings"

	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestContextMiddleware threads the correlation id and the viewer
// role flag through the request context. The role flag only controls
// output projection downstream; it never selects a computation path.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := strings.TrimSpace(c.Request.Header.Get("X-Correlation-Id"))
		if correlationId == "" {
			correlationId = uuid.NewString()
		}

		role := strings.TrimSpace(c.Request.Header.Get("X-Viewer-Role"))
		isPrivileged := role != "" && !strings.EqualFold(role, "User")

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		ctx = utils.SetIsPrivilegedInContext(ctx, isPrivileged)
		if userName := strings.TrimSpace(c.Request.Header.Get("X-User-Name")); userName != "" {
			ctx = utils.SetUserNameInContext(ctx, userName)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
