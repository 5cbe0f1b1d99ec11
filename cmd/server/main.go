package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	dbLogHandler := logging.Attach(database.DB)

	// Log and refresh token retention
	maintenance, err := logging.StartMaintenance(database.DB, cfg.MaintenanceSchedule, cfg.LogRetentionDays)
	if err != nil {
		slog.Error("invalid maintenance schedule", "schedule", cfg.MaintenanceSchedule, "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Services
	identityService := services.NewIdentityService(database.DB)
	authService := services.NewAuthService(database.DB, cfg)
	contactService := services.NewContactService(database.DB, m)
	participantService := services.NewParticipantService(database.DB, m)
	calendarService := services.NewCalendarService(database.DB, cfg, m)
	invitationService := services.NewInvitationService(database.DB, m)
	timeslotService := services.NewTimeSlotService(database.DB)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(database.DB),
		Admin:      handlers.NewAdminHandler(database.DB),
		Contact:    handlers.NewContactHandler(contactService, identityService),
		Calendar:   handlers.NewCalendarHandler(calendarService, participantService),
		Invitation: handlers.NewInvitationHandler(invitationService),
		TimeSlot:   handlers.NewTimeSlotHandler(timeslotService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.Metrics(m))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, database.DB, h, routes.Options{
		RateLimit:     60,
		AuthRateLimit: 10,
		Gatherer:      registry,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	<-maintenance.Stop().Done()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	dbLogHandler.Stop()

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// customErrorHandler answers errors that escaped the handlers (unknown
// routes, body limit, panics) in the same shape as handler errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		rid, _ := c.Locals("requestid").(string)
		slog.Error("unhandled server error", "action", "http.unhandled", "request_id", rid,
			"method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
