package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// WebhookHandler handles webhook endpoint lifecycle operations.
type WebhookHandler struct {
	webhooks *services.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhooks *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// HandleCreate registers a webhook. The signing secret appears in plaintext
// in this response only.
func (wh *WebhookHandler) HandleCreate(c *gin.Context) {
	var input services.CreateWebhookInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: name, url and events are required")
		return
	}

	webhook, err := wh.webhooks.CreateWebhook(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "webhook created; store the secret now, it will not be shown again", webhook)
}

// HandleList returns all webhooks with masked secrets.
func (wh *WebhookHandler) HandleList(c *gin.Context) {
	webhooks, err := wh.webhooks.ListWebhooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, webhooks, len(webhooks))
}

// HandleGet returns one webhook with a masked secret.
func (wh *WebhookHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	webhook, err := wh.webhooks.GetWebhook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, webhook)
}

// HandleUpdate applies a partial update; supplying a secret rotates it.
func (wh *WebhookHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.UpdateWebhookInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	webhook, err := wh.webhooks.UpdateWebhook(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, webhook)
}

type deleteWebhookRequest struct {
	Reason string `json:"reason"`
}

// HandleDelete deactivates a webhook, recording the reason.
func (wh *WebhookHandler) HandleDelete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req deleteWebhookRequest
	_ = c.BindJSON(&req) // body optional

	if err := wh.webhooks.SoftDeleteWebhook(c.Request.Context(), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "webhook deactivated")
}

// HandleTest records a test delivery against an active webhook.
func (wh *WebhookHandler) HandleTest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	webhook, err := wh.webhooks.RecordTestDelivery(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, webhook)
}
