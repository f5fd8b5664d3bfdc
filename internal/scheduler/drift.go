package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
)

// SessionRunner advances every live session
type SessionRunner interface {
	RunAll(steps uint32) []stability.RunResult
}

// EventEmitter publishes typed events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// DriftJob lets every session evolve in the background by a fixed number of steps
type DriftJob struct {
	runner SessionRunner
	steps  uint32
	events EventEmitter
	log    zerolog.Logger
}

// NewDriftJob creates a drift job. emitter may be nil.
func NewDriftJob(runner SessionRunner, steps uint32, emitter EventEmitter, log zerolog.Logger) *DriftJob {
	return &DriftJob{
		runner: runner,
		steps:  steps,
		events: emitter,
		log:    log.With().Str("job", "session_drift").Logger(),
	}
}

// Name returns the job name
func (j *DriftJob) Name() string {
	return "session_drift"
}

// Run advances all sessions once
func (j *DriftJob) Run() error {
	start := time.Now()
	results := j.runner.RunAll(j.steps)

	var corrections uint64
	for _, res := range results {
		corrections += uint64(res.Report.Corrections)
	}

	j.log.Info().
		Int("sessions", len(results)).
		Uint32("steps", j.steps).
		Uint64("corrections", corrections).
		Dur("duration_ms", time.Since(start)).
		Msg("Drift completed")

	if j.events != nil {
		j.events.EmitTyped("scheduler", &events.DriftCompletedData{
			Sessions:    len(results),
			Steps:       j.steps,
			Corrections: corrections,
		})
	}
	return nil
}
