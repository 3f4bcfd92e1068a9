package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/models"
	"github.com/opsboard/backoffice/src/services"
)

// AuditMiddleware records every successful mutating request as an audit entry.
// Reads (GET, HEAD, OPTIONS) are skipped. The write happens after the handler
// finishes and never affects the response.
func AuditMiddleware(audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			return
		}
		if c.Writer.Status() >= 400 {
			return
		}

		actor := c.GetString("username")
		if actor == "" {
			actor = "anonymous"
		}

		entry := models.AuditLog{
			Actor:    actor,
			Action:   fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
			Entity:   c.FullPath(),
			EntityID: c.Param("id"),
			Detail:   fmt.Sprintf("status=%d request_id=%s", c.Writer.Status(), GetRequestID(c)),
		}

		// Detached context: the request context is cancelled once the
		// response is written.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		audit.Record(ctx, entry)
	}
}
