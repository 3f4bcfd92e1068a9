package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// TenantHandler handles tenant administration.
type TenantHandler struct {
	tenants *services.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenants *services.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// HandleCreate registers a tenant.
func (th *TenantHandler) HandleCreate(c *gin.Context) {
	var input services.CreateTenantInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: name and slug are required")
		return
	}

	tenant, err := th.tenants.CreateTenant(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "tenant created", tenant)
}

// HandleList returns tenants, optionally filtered by status.
func (th *TenantHandler) HandleList(c *gin.Context) {
	tenants, err := th.tenants.ListTenants(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, tenants, len(tenants))
}

// HandleGet returns one tenant.
func (th *TenantHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tenant, err := th.tenants.GetTenant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tenant)
}

// HandleUpdate updates tenant metadata.
func (th *TenantHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.BindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	tenant, err := th.tenants.UpdateTenant(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tenant)
}

type tenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleSetStatus suspends or reactivates a tenant.
func (th *TenantHandler) HandleSetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req tenantStatusRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: status is required")
		return
	}

	if err := th.tenants.SetTenantStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "tenant status updated")
}

// HandleHealth returns the derived health view for one tenant.
func (th *TenantHandler) HandleHealth(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	health, err := th.tenants.Health(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, health)
}
