package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func withTestSecret(t *testing.T) {
	t.Helper()
	originalSecret := JWTSecret
	if err := SetJWTSecret("test-secret-for-unit-tests-32ch!"); err != nil {
		t.Fatalf("SetJWTSecret failed: %v", err)
	}
	t.Cleanup(func() { JWTSecret = originalSecret })
}

func TestSetJWTSecret(t *testing.T) {
	originalSecret := JWTSecret
	defer func() { JWTSecret = originalSecret }()

	if err := SetJWTSecret(""); err == nil {
		t.Error("expected error for empty secret")
	}
	if err := SetJWTSecret("too-short"); err == nil {
		t.Error("expected error for short secret")
	}
	if err := SetJWTSecret("test-secret-for-unit-tests-32ch!"); err != nil {
		t.Errorf("valid secret rejected: %v", err)
	}
}

func TestGenerateAdminToken(t *testing.T) {
	withTestSecret(t)

	adminID := uuid.New()
	token, err := GenerateAdminToken(adminID, "testadmin")
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := ValidateAdminToken(token)
	if err != nil {
		t.Fatalf("ValidateAdminToken failed: %v", err)
	}
	if claims.AdminID != adminID.String() {
		t.Errorf("Expected admin_id %s, got %s", adminID, claims.AdminID)
	}
	if claims.Username != "testadmin" {
		t.Errorf("Expected username testadmin, got %s", claims.Username)
	}
}

func TestAdminAuthMiddleware_WithValidCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withTestSecret(t)

	token, err := GenerateAdminToken(uuid.New(), "testadmin")
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	w := httptest.NewRecorder()
	c, router := gin.CreateTestContext(w)
	router.Use(AdminAuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		username, _ := c.Get("username")
		c.JSON(http.StatusOK, gin.H{"username": username})
	})

	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Request.AddCookie(&http.Cookie{Name: "admin_token", Value: token})
	router.ServeHTTP(w, c.Request)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminAuthMiddleware_WithValidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withTestSecret(t)

	token, err := GenerateAdminToken(uuid.New(), "testadmin")
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	w := httptest.NewRecorder()
	c, router := gin.CreateTestContext(w)
	router.Use(AdminAuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, c.Request)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminAuthMiddleware_MissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, router := gin.CreateTestContext(w)
	router.Use(AdminAuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, c.Request)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestAdminAuthMiddleware_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withTestSecret(t)

	w := httptest.NewRecorder()
	c, router := gin.CreateTestContext(w)
	router.Use(AdminAuthMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Request.Header.Set("Authorization", "Bearer invalid_token")
	router.ServeHTTP(w, c.Request)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
