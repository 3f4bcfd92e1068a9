package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// SettingsHandler handles setting CRUD, value updates and history.
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// HandleList returns settings grouped by category.
func (sh *SettingsHandler) HandleList(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	grouped, count, err := sh.settings.ListSettings(c.Request.Context(),
		c.Query("category"), c.Query("key"), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, grouped, count)
}

// HandleGet returns one setting by id.
func (sh *SettingsHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	setting, err := sh.settings.GetSetting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, setting)
}

// HandleGetByKey returns one setting by its key.
func (sh *SettingsHandler) HandleGetByKey(c *gin.Context) {
	setting, err := sh.settings.GetSettingByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, setting)
}

// updateValueRequest accepts any JSON value and normalizes it to the string
// form the store persists. A missing setting_value is a 400.
type updateValueRequest struct {
	Value        *any   `json:"setting_value"`
	ChangeReason string `json:"change_reason"`
}

func (r *updateValueRequest) stringValue() string {
	switch v := (*r.Value).(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

// HandleUpdateValue updates a setting's value by id.
func (sh *SettingsHandler) HandleUpdateValue(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateValueRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Value == nil {
		respondBadRequest(c, "setting_value is required")
		return
	}

	setting, err := sh.settings.UpdateValue(c.Request.Context(), id, req.stringValue(), actorID(c), req.ChangeReason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, setting)
}

// HandleUpdateValueByKey updates a setting's value by key.
func (sh *SettingsHandler) HandleUpdateValueByKey(c *gin.Context) {
	var req updateValueRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Value == nil {
		respondBadRequest(c, "setting_value is required")
		return
	}

	setting, err := sh.settings.UpdateValueByKey(c.Request.Context(), c.Param("key"), req.stringValue(), actorID(c), req.ChangeReason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, setting)
}

// bulkUpdateRequest is the request body for the bulk value update.
type bulkUpdateRequest struct {
	Settings     []services.BulkItem `json:"settings" binding:"required"`
	ChangeReason string              `json:"change_reason"`
}

// HandleBulkUpdate applies a batch of value updates atomically. Any item
// failure rolls back the whole batch; the response itemizes outcomes.
func (sh *SettingsHandler) HandleBulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if len(req.Settings) == 0 {
		respondBadRequest(c, "settings array is required")
		return
	}

	result, err := sh.settings.BulkUpdate(c.Request.Context(), req.Settings, actorID(c), req.ChangeReason)
	if err != nil {
		if errors.Is(err, services.ErrBulkFailed) {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "one or more settings failed validation; no changes applied",
				Data:    result,
			})
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// HandleCreate registers a new setting definition.
func (sh *SettingsHandler) HandleCreate(c *gin.Context) {
	var input services.CreateSettingInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	setting, err := sh.settings.CreateSetting(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "setting created", setting)
}

// HandleDelete soft-deletes a setting.
func (sh *SettingsHandler) HandleDelete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sh.settings.SoftDeleteSetting(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "setting deactivated")
}

// HandleHistory returns change history for one setting, newest first.
func (sh *SettingsHandler) HandleHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "setting_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	history, err := sh.settings.GetHistory(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, history, len(history))
}
