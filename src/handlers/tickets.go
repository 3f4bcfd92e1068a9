package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsboard/backoffice/src/services"
)

// TicketHandler handles support ticket administration.
type TicketHandler struct {
	tickets *services.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// HandleCreate opens a ticket.
func (th *TicketHandler) HandleCreate(c *gin.Context) {
	var input services.CreateTicketInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: subject is required")
		return
	}

	ticket, err := th.tickets.CreateTicket(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "ticket created", ticket)
}

// HandleList returns tickets with optional status/priority/tenant filters.
func (th *TicketHandler) HandleList(c *gin.Context) {
	var tenantID *uuid.UUID
	if raw := c.Query("tenant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, "invalid tenant_id parameter")
			return
		}
		tenantID = &id
	}

	tickets, err := th.tickets.ListTickets(c.Request.Context(), c.Query("status"), c.Query("priority"), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, tickets, len(tickets))
}

// HandleGet returns one ticket.
func (th *TicketHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ticket, err := th.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ticket)
}

type ticketStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleUpdateStatus moves a ticket through its workflow.
func (th *TicketHandler) HandleUpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ticketStatusRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: status is required")
		return
	}

	ticket, err := th.tickets.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ticket)
}

type assignRequest struct {
	AdminID *uuid.UUID `json:"admin_id"`
}

// HandleAssign sets or clears a ticket's assignee.
func (th *TicketHandler) HandleAssign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := th.tickets.Assign(c.Request.Context(), id, req.AdminID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "ticket assignment updated")
}
