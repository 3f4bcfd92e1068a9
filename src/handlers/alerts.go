package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// AlertHandler handles operational alerts.
type AlertHandler struct {
	alerts *services.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// HandleCreate raises an alert.
func (ah *AlertHandler) HandleCreate(c *gin.Context) {
	var input services.CreateAlertInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: source and message are required")
		return
	}

	alert, err := ah.alerts.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "alert raised", alert)
}

// HandleList returns alerts, optionally filtered by status.
func (ah *AlertHandler) HandleList(c *gin.Context) {
	alerts, err := ah.alerts.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, alerts, len(alerts))
}

// HandleAcknowledge marks an active alert as seen by the calling admin.
func (ah *AlertHandler) HandleAcknowledge(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	admin := actorID(c)
	if admin == nil {
		respondBadRequest(c, "missing admin identity")
		return
	}

	if err := ah.alerts.Acknowledge(c.Request.Context(), id, *admin); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "alert acknowledged")
}

// HandleResolve closes an alert.
func (ah *AlertHandler) HandleResolve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ah.alerts.Resolve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "alert resolved")
}
