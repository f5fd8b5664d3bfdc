// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/config"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/scheduler"
)

// RegisterJobs creates the background jobs and schedules those with a configured
// schedule. Jobs are always returned for manual triggering via API.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		Drift: scheduler.NewDriftJob(container.SessionRegistry, cfg.AutoRunSteps, container.EventManager, log),
	}

	if cfg.AutoRunSchedule == "" {
		log.Info().Msg("Drift job not scheduled (AUTO_RUN_SCHEDULE empty)")
		return instances, nil
	}

	if err := container.Scheduler.AddJob(cfg.AutoRunSchedule, instances.Drift); err != nil {
		return nil, err
	}
	return instances, nil
}
