package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUpdateValueRequest_StringValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "smtp.example.com", "smtp.example.com"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"integer", float64(42), "42"},
		{"float", float64(1.5), "1.5"},
		{"null", nil, ""},
		{"object", map[string]any{"retries": float64(3)}, `{"retries":3}`},
		{"array", []any{"a", "b"}, `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := updateValueRequest{Value: &tt.in}
			if got := req.stringValue(); got != tt.want {
				t.Errorf("stringValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleUpdateValue_MissingValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sh := NewSettingsHandler(nil)

	w, c := createTestContext()
	c.Params = gin.Params{{Key: "id", Value: "4f3c9c2e-9a1b-4d7e-8f6a-1b2c3d4e5f60"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/settings/x",
		bytes.NewBufferString(`{"change_reason":"no value here"}`))

	sh.HandleUpdateValue(c)
	assertStatusCode(t, w, http.StatusBadRequest)
	assertJSONError(t, w, "setting_value is required")
}

func TestHandleUpdateValue_BadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sh := NewSettingsHandler(nil)

	w, c := createTestContext()
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	sh.HandleUpdateValue(c)
	assertStatusCode(t, w, http.StatusBadRequest)
}

func TestHandleBulkUpdate_EmptyBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sh := NewSettingsHandler(nil)

	w, c := createTestContext()
	c.Request = httptest.NewRequest(http.MethodPut, "/settings/bulk",
		bytes.NewBufferString(`{"settings":[]}`))

	sh.HandleBulkUpdate(c)
	assertStatusCode(t, w, http.StatusBadRequest)
}
