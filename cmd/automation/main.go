package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"browser-automation/internal/di"
	"browser-automation/internal/infrastructure/env"
)

func main() {
	cfg := env.Load(env.NewEnvService())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer container.Close()

	container.Logger.Info("Browser automation service started",
		"addr", cfg.Server.Addr,
		"headless", cfg.Browser.Headless,
		"control_url", cfg.Browser.ControlURL,
		"ocr", cfg.OCR.Enabled)

	if err := container.Server.ListenAndServe(ctx); err != nil {
		container.Logger.Error("Server stopped with error", "error", err)
		container.Close()
		os.Exit(1)
	}
	container.Logger.Info("Browser automation service stopped")
}
