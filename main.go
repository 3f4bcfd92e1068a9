package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/config"
	"github.com/opsboard/backoffice/src/database"
	"github.com/opsboard/backoffice/src/handlers"
	"github.com/opsboard/backoffice/src/logging"
	"github.com/opsboard/backoffice/src/middleware"
	"github.com/opsboard/backoffice/src/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("database connected")

	// Initialize JWT secret in middleware
	if err := middleware.SetJWTSecret(cfg.JWTSecret); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize JWT secret")
	}

	// Secret codec for encrypted settings
	codec := services.NewSecretCodec(cfg.EncryptionSecret, cfg.SimpleEncryption, logging.NewLogger("crypto"))
	if cfg.SimpleEncryption {
		log.Info().Msg("settings encryption in simple (reversible) mode")
	} else if cfg.EncryptionSecret != "" {
		log.Info().Msg("settings encryption enabled (AES-256-GCM)")
	} else {
		log.Warn().Msg("ENCRYPTION_SECRET not set - encrypted settings stored with empty-derived key")
	}

	// Initialize services
	pool := db.GetPool()
	settingsService := services.NewSettingsService(pool, codec)
	apiKeyService := services.NewAPIKeyService(pool)
	webhookService := services.NewWebhookService(pool)
	adminService := services.NewAdminService(pool)
	auditService := services.NewAuditService(pool)
	tenantService := services.NewTenantService(pool)
	ticketService := services.NewTicketService(pool)
	notificationService := services.NewNotificationService(pool)
	reportService := services.NewReportService(pool)
	alertService := services.NewAlertService(pool)
	jobWorker := services.NewJobWorker(pool, reportService,
		time.Duration(cfg.JobPollInterval)*time.Second)

	// Auto-seed admin user on first run (if ADMIN_USERNAME and ADMIN_PASSWORD are set)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hasAdmins, err := adminService.HasAdmins(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("failed to check for existing admin users")
		} else if !hasAdmins {
			if _, err := adminService.CreateAdminUser(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
				log.Error().Err(err).Msg("failed to create initial admin user")
			} else {
				log.Info().Str("username", cfg.AdminUsername).Msg("initial admin user created")
			}
		}
	}

	// Start background job worker
	jobWorker.Start(context.Background())

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if origin == "http://localhost" || strings.HasPrefix(origin, "http://localhost:") {
				return true
			}
			for _, allowed := range strings.Split(cfg.AllowedOrigins, ",") {
				if allowed != "" && origin == strings.TrimSpace(allowed) {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, db, auditService, settingsService, apiKeyService, webhookService,
		adminService, tenantService, ticketService, notificationService, reportService, alertService)

	// HTTP server with timeouts (protect from Slowloris)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Stop background worker before the server
	jobWorker.Stop()

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

func setupRoutes(
	router *gin.Engine,
	db *database.Database,
	auditService *services.AuditService,
	settingsService *services.SettingsService,
	apiKeyService *services.APIKeyService,
	webhookService *services.WebhookService,
	adminService *services.AdminService,
	tenantService *services.TenantService,
	ticketService *services.TicketService,
	notificationService *services.NotificationService,
	reportService *services.ReportService,
	alertService *services.AlertService,
) {
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(adminService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)
	alertHandler := handlers.NewAlertHandler(alertService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Unauthenticated endpoints
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	// Login is rate limited per IP and outside the auth wall
	api.POST("/auth/login", middleware.AuthRateLimitMiddleware(), authHandler.HandleLogin)

	// Everything else requires an admin JWT; mutations are audited
	authed := api.Group("")
	authed.Use(middleware.AdminAuthMiddleware())
	authed.Use(middleware.AuditMiddleware(auditService))
	{
		authed.POST("/auth/logout", authHandler.HandleLogout)
		authed.GET("/auth/status", authHandler.HandleStatus)

		// Settings
		authed.GET("/settings", settingsHandler.HandleList)
		authed.POST("/settings", settingsHandler.HandleCreate)
		authed.GET("/settings/key/:key", settingsHandler.HandleGetByKey)
		authed.PUT("/settings/key/:key", settingsHandler.HandleUpdateValueByKey)
		authed.PUT("/settings/bulk/update", settingsHandler.HandleBulkUpdate)
		authed.GET("/settings/history/:setting_id", settingsHandler.HandleHistory)

		// API keys (registered before /settings/:id so the literal segments win)
		authed.POST("/settings/api-key/generate", apiKeyHandler.HandleGenerate)
		authed.GET("/settings/api-key/list", apiKeyHandler.HandleList)
		authed.PUT("/settings/api-key/:id", apiKeyHandler.HandleUpdate)
		authed.POST("/settings/api-key/:id/regenerate", apiKeyHandler.HandleRegenerate)
		authed.DELETE("/settings/api-key/:id", apiKeyHandler.HandleRevoke)

		// Webhooks
		authed.POST("/settings/webhook", webhookHandler.HandleCreate)
		authed.GET("/settings/webhook", webhookHandler.HandleList)
		authed.GET("/settings/webhook/:id", webhookHandler.HandleGet)
		authed.PUT("/settings/webhook/:id", webhookHandler.HandleUpdate)
		authed.DELETE("/settings/webhook/:id", webhookHandler.HandleDelete)
		authed.POST("/settings/webhook/:id/test", webhookHandler.HandleTest)

		authed.GET("/settings/:id", settingsHandler.HandleGet)
		authed.PUT("/settings/:id", settingsHandler.HandleUpdateValue)
		authed.DELETE("/settings/:id", settingsHandler.HandleDelete)

		// Tenants
		authed.POST("/tenants", tenantHandler.HandleCreate)
		authed.GET("/tenants", tenantHandler.HandleList)
		authed.GET("/tenants/:id", tenantHandler.HandleGet)
		authed.PUT("/tenants/:id", tenantHandler.HandleUpdate)
		authed.PUT("/tenants/:id/status", tenantHandler.HandleSetStatus)
		authed.GET("/tenants/:id/health", tenantHandler.HandleHealth)

		// Tickets
		authed.POST("/tickets", ticketHandler.HandleCreate)
		authed.GET("/tickets", ticketHandler.HandleList)
		authed.GET("/tickets/:id", ticketHandler.HandleGet)
		authed.PUT("/tickets/:id/status", ticketHandler.HandleUpdateStatus)
		authed.PUT("/tickets/:id/assign", ticketHandler.HandleAssign)

		// Notifications
		authed.POST("/notifications", notificationHandler.HandleCreate)
		authed.GET("/notifications", notificationHandler.HandleList)
		authed.GET("/notifications/unread-count", notificationHandler.HandleUnreadCount)
		authed.PUT("/notifications/:id/read", notificationHandler.HandleMarkRead)

		// Reports and generation jobs
		authed.POST("/reports", reportHandler.HandleCreate)
		authed.GET("/reports", reportHandler.HandleList)
		authed.GET("/reports/:id", reportHandler.HandleGet)
		authed.PUT("/reports/:id", reportHandler.HandleUpdate)
		authed.PUT("/reports/:id/schedule", reportHandler.HandleSetSchedule)
		authed.POST("/reports/:id/generate", reportHandler.HandleGenerate)
		authed.GET("/reports/:id/jobs", reportHandler.HandleListJobs)

		// Alerts
		authed.POST("/alerts", alertHandler.HandleCreate)
		authed.GET("/alerts", alertHandler.HandleList)
		authed.PUT("/alerts/:id/acknowledge", alertHandler.HandleAcknowledge)
		authed.PUT("/alerts/:id/resolve", alertHandler.HandleResolve)

		// Audit trail
		authed.GET("/audit-logs", auditHandler.HandleList)
	}
}
