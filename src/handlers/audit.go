package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// HandleList returns audit entries newest first with paging.
func (ah *AuditHandler) HandleList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	logs, total, err := ah.audit.List(c.Request.Context(), services.AuditFilter{
		Actor:  c.Query("actor"),
		Action: c.Query("action"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, logs, total)
}
