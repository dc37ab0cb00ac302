package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/birbnest/jsonregistry/internal/api"
	"github.com/birbnest/jsonregistry/internal/registry"
	"github.com/birbnest/jsonregistry/internal/telemetry"
)

var version = "dev"

func main() {
	apiCfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load api configuration: %v", err)
	}

	registryCfg, err := registry.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load registry configuration: %v", err)
	}

	telemetryCfg := telemetry.NewConfigFromEnv()
	if err := telemetry.Init(telemetryCfg); err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.L().Info("json registry starting")

	ctx := context.Background()
	core, err := registry.New(ctx, registryCfg)
	if err != nil {
		telemetry.L().WithError(err).Fatal("failed to initialize registry core")
	}
	defer core.Close()
	telemetry.L().Info("connected to database")

	telemetry.RegisterCoreMetrics(core)

	handler := api.NewHandler(core, version)

	app := fiber.New(fiber.Config{
		AppName:               "jsonregistry",
		ReadTimeout:           time.Duration(apiCfg.RequestTimeout) * time.Second,
		WriteTimeout:          time.Duration(apiCfg.RequestTimeout) * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})

	api.SetupMiddleware(app)
	api.SetupRoutes(app, handler, apiCfg.APIKey)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		telemetry.L().Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(apiCfg.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			telemetry.L().WithError(err).Error("server forced to shutdown")
		}
		core.Close()
	}()

	addr := fmt.Sprintf("%s:%d", apiCfg.Host, apiCfg.Port)
	telemetry.L().WithField("addr", addr).Info("listening")

	if err := app.Listen(addr); err != nil {
		telemetry.L().WithError(err).Fatal("server stopped")
	}
}
