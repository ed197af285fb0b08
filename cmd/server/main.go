package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jukebox/internal/app"
	"jukebox/pkg/logger"
)

func main() {
	log := logger.New("main")

	app, err := app.New()
	if err != nil {
		os.Exit(1)
	}

	log.Info("Jukebox backend started")

	// Wait for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down gracefully")

	if err := app.Close(); err != nil {
		log.Er("failed to close app", err)
		os.Exit(1)
	}

	log.Info("Graceful shutdown complete.")
}
