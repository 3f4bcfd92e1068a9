package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// APIKeyHandler handles API key lifecycle operations.
type APIKeyHandler struct {
	keys *services.APIKeyService
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keys *services.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// HandleGenerate creates a new API key. The plaintext key appears in this
// response only; every later read is masked.
func (kh *APIKeyHandler) HandleGenerate(c *gin.Context) {
	var input services.GenerateKeyInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: key_name is required")
		return
	}

	key, err := kh.keys.GenerateKey(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "api key generated; store it now, it will not be shown again", key)
}

// HandleList returns all keys with masked values.
func (kh *APIKeyHandler) HandleList(c *gin.Context) {
	keys, err := kh.keys.ListKeys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, keys, len(keys))
}

// HandleUpdate updates key metadata.
func (kh *APIKeyHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.UpdateKeyInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	key, err := kh.keys.UpdateKey(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, key)
}

// HandleRegenerate rotates a key in place. The old secret stops working
// immediately; the new plaintext appears in this response only.
func (kh *APIKeyHandler) HandleRegenerate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key, err := kh.keys.RotateKey(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, key)
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

// HandleRevoke permanently deactivates a key.
func (kh *APIKeyHandler) HandleRevoke(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req revokeRequest
	_ = c.BindJSON(&req) // body optional

	if err := kh.keys.RevokeKey(c.Request.Context(), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "api key revoked")
}
