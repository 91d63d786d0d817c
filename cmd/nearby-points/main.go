package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/pontos/nearby-points/internal/api/http"
	"github.com/pontos/nearby-points/internal/config"
	"github.com/pontos/nearby-points/internal/dataset"
	"github.com/pontos/nearby-points/internal/geolocation/providers"
	"github.com/pontos/nearby-points/internal/logger"
	"github.com/pontos/nearby-points/internal/places"
	"github.com/pontos/nearby-points/internal/scheduler"
	"github.com/pontos/nearby-points/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	// Static dataset, loaded once and shared read-only.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	data, err := dataset.Load(loadCtx, cfg.DatasetPath, dataset.Options{
		Sheet: cfg.DatasetSheet,
		Table: cfg.DatasetTable,
	})
	cancelLoad()
	if err != nil {
		appLogger.Fatal("failed to load dataset", zap.String("path", cfg.DatasetPath), zap.Error(err))
	}
	appLogger.Info("dataset loaded",
		zap.String("source", data.Source),
		zap.Int("records", len(data.Records)),
		zap.Int("skipped", data.Skipped))

	// Shared HTTP client for outbound locator calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Locators are tried in order; the first fix wins.
	var locators []places.Locator
	if cfg.GoogleGeocoderAPIKey != "" {
		locators = append(locators, providers.NewGoogleGeocoderLocator(cfg.GoogleGeocoderAPIKey))
	}
	locators = append(locators, providers.NewIPAPILocator(httpClient, cfg.IPAPIURL))
	if cfg.DefaultObserver != nil {
		locators = append(locators, providers.NewStaticLocator(*cfg.DefaultObserver))
	}

	sessions := store.NewMemoryStore(cfg.SessionMaxHistory, cfg.SessionMaxAge)
	service := places.NewService(data.Records, sessions, locators, appLogger)

	sched := scheduler.New(cfg.RefreshInterval, service, appLogger)
	if err := sched.Start(); err != nil {
		appLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "nearby-points",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "nearby-points",
			"records": len(service.Records()),
		})
	})

	httpapi.RegisterRoutes(app, service, httpapi.Options{
		TopN:        cfg.TopN,
		Logos:       places.NewLogoCatalog(places.DefaultLogos, places.FallbackLogo),
		MapPlatform: cfg.MapPlatform,
	})

	go func() {
		appLogger.Info("starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	appLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("error during shutdown", zap.Error(err))
	}
}
