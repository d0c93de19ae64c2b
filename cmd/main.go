package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"report-intake-gateway/pkg/clients/discord"
	"report-intake-gateway/pkg/constants"
	"report-intake-gateway/pkg/httpServer"
	intakeRepository "report-intake-gateway/pkg/repositories/intake"
	adminService "report-intake-gateway/pkg/services/admin"
	intakeService "report-intake-gateway/pkg/services/intake"
	ratelimitService "report-intake-gateway/pkg/services/ratelimit"
	"report-intake-gateway/pkg/workers"
	"report-intake-gateway/pkg/workers/cleaner"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() (err error) {
	// Tools
	config := loadConfig()
	if config == nil {
		fmt.Println("failed to load configuration")
		return
	}

	logLevel := slog.LevelInfo
	if level, ok := logLevels[config.System.LogLevel]; ok {
		logLevel = level
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Metrics
	storeRequestsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.StoreSubsystem,
			Name:      "store_requests_count",
			Help:      "Store requests count",
		},
		[]string{"method", "error"},
	)

	storeRequestsDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.StoreSubsystem,
			Name:      "store_requests_duration",
			Help:      "Store requests duration",
		},
		[]string{"method", "error"},
	)

	prometheus.MustRegister(
		storeRequestsCount,
		storeRequestsDuration,
	)

	// Storage
	repo := intakeRepository.NewRepository()
	repo = intakeRepository.NewMetrics(storeRequestsCount, storeRequestsDuration, repo)

	// Clients
	webhook := discord.NewClient(
		config.Webhook.URL,
		time.Duration(config.Webhook.TimeoutSeconds)*time.Second,
	)

	// Services
	gateConfig := ratelimitService.Config{
		Policy:      ratelimitService.Policy(config.RateLimit.Policy),
		Cooldown:    time.Duration(config.RateLimit.CooldownSeconds) * time.Second,
		MaxRequests: config.RateLimit.MaxRequests,
		Window:      time.Duration(config.RateLimit.WindowSeconds) * time.Second,
	}
	gate, err := ratelimitService.NewService(repo, gateConfig, logger)
	if err != nil {
		logger.Error("failed to create rate gate", slog.String("error", err.Error()))
		return
	}

	intakeSvc := intakeService.NewService(repo, gate, webhook, logger)
	adminSvc := adminService.NewService(config.Admin.Username, config.Admin.Password, repo, logger)

	// Workers
	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	const stagedReportTTL = time.Hour
	cleanerWorker := cleaner.NewWorker(repo, gateConfig.Retention(), stagedReportTTL, logger)
	workersSvc := workers.NewWorkers(cleanerWorker, logger)
	if err = workersSvc.Start(workersCtx); err != nil {
		logger.Error("failed to start workers", slog.String("error", err.Error()))
		return
	}

	// HTTP Server
	app := fiber.New(fiber.Config{
		// headroom over the attachment limit so oversized uploads reach
		// the handler's own size check instead of fiber's body cap
		BodyLimit: constants.MaxAttachmentSize + 1<<20,
	})
	server := httpServer.New(
		app,
		intakeSvc,
		adminSvc,
		config.Metrics.Namespace,
		config.Metrics.ServerSubsystem,
		logger,
	)
	if server == nil {
		return fmt.Errorf("failed to create HTTP server handler")
	}

	server.RegisterRoutes()

	go func() {
		if err := app.Listen(":" + config.System.Port); err != nil {
			logger.Error("error starting server", slog.String("err", err.Error()))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	<-signalChan

	cancelWorkers()

	err = app.ShutdownWithTimeout(time.Second * 5)
	if err != nil {
		logger.Error("server shut down error", slog.String("err", err.Error()))
		return err
	}

	return err
}
