// Package main is the entry point for tritd, the trit stability service.
// It hosts corrector sessions in memory, exposes the trit gate set and the
// diagnostics over HTTP, and optionally drifts every session on a cron schedule.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/config"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/di"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/server"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/pkg/logger"
)

// shutdownTimeout bounds graceful HTTP shutdown
const shutdownTimeout = 10 * time.Second

// main is the application entry point:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires events, metrics, the session registry and the scheduler
// 4. Starts the HTTP server and the scheduler
// 5. Waits for SIGINT/SIGTERM and shuts everything down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting tritd")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
		Jobs:      jobs,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	container.Scheduler.Start()
	log.Info().
		Int("port", cfg.Port).
		Int("scheduled_jobs", container.Scheduler.Entries()).
		Msg("Server started successfully")

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		container.Scheduler.Stop()
		log.Info().Msg("Scheduler stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}

	log.Info().Int("sessions", container.SessionRegistry.Count()).Msg("Server stopped")
}
