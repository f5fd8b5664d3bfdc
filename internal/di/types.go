/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/config"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/metrics"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Events: in-process bus plus a manager that logs every emission
 * - Metrics: Prometheus collectors on a private registry
 * - Sessions: the in-memory corrector session registry (no persistence)
 * - Scheduler: cron scheduler with the background drift job
 */
type Container struct {
	Config *config.Config

	EventBus     *events.Bus     // Event bus for pub/sub
	EventManager *events.Manager // Event manager (wraps bus)
	Metrics      *metrics.Metrics

	SessionRegistry *stability.SessionRegistry // Live corrector sessions

	Scheduler *scheduler.Scheduler
}

// JobInstances holds job instances for manual triggering via API
type JobInstances struct {
	Drift *scheduler.DriftJob
}
