package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/logging"
	"github.com/opsboard/backoffice/src/middleware"
	"github.com/opsboard/backoffice/src/services"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	admins *services.AdminService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(admins *services.AdminService) *AuthHandler {
	return &AuthHandler{admins: admins}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for successful login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// HandleLogin authenticates an admin and returns a JWT token, also set as an
// HttpOnly cookie.
func (ah *AuthHandler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	logger := logging.ComponentLogger("auth", middleware.GetRequestID(c))

	admin, err := ah.admins.AuthenticateAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warn().Str("username", req.Username).Msg("login failed")
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to generate token"})
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	c.SetCookie(
		"admin_token",
		token,
		int(24*time.Hour.Seconds()),
		"/",
		"",
		true, // Secure
		true, // HttpOnly
	)

	logger.Info().Str("username", admin.Username).Msg("admin logged in")
	respondOK(c, LoginResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}

// HandleLogout clears the admin token cookie
func (ah *AuthHandler) HandleLogout(c *gin.Context) {
	c.SetCookie(
		"admin_token",
		"",
		-1,
		"/",
		"",
		true, // Secure
		true, // HttpOnly
	)
	respondMessage(c, "logged out")
}

// StatusResponse represents the response for the auth status check
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	AdminID       string `json:"admin_id"`
	Username      string `json:"username"`
}

// HandleStatus returns the current admin authentication status
func (ah *AuthHandler) HandleStatus(c *gin.Context) {
	respondOK(c, StatusResponse{
		Authenticated: true,
		AdminID:       c.GetString("admin_id"),
		Username:      c.GetString("username"),
	})
}
