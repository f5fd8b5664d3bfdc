// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/config"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/metrics"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Events and metrics
// 2. Session registry (with lifecycle listener)
// 3. Scheduler and jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	container := &Container{Config: cfg}

	// Step 1: Events and metrics
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)
	container.Metrics = metrics.New(true)

	// Step 2: Sessions
	container.SessionRegistry = stability.NewSessionRegistry(cfg.Stability, cfg.MaxSessions, log)
	container.SessionRegistry.SetDefaultSeed(cfg.DefaultSeed)
	container.SessionRegistry.SetListener(NewSessionListener(container.EventManager, container.Metrics))

	// Step 3: Scheduler and jobs
	container.Scheduler = scheduler.New(log)
	container.Scheduler.SetRecorder(container.Metrics)

	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().
		Int("max_sessions", cfg.MaxSessions).
		Float64("noise_probability", cfg.Stability.NoiseProbability).
		Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
