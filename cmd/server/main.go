// Command server runs the storefront.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gitshopapp/storefront/app"
	"github.com/gitshopapp/storefront/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// The environment may already be populated without a .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLogger.Warn("failed to load .env", "error", err)
	}

	application, err := app.New()
	if err != nil {
		bootLogger.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	err = run(application)
	application.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until the listener fails or a termination signal arrives, then
// drains in-flight requests.
func run(application *app.App) error {
	logger := application.Logger
	srv, err := server.New(application.Config, logger, application.Handlers)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Run() }()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}
	return nil
}
