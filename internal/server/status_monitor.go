package server

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
)

// coherenceEpsilon is the smallest mean coherence change that counts as a status change
const coherenceEpsilon = 1e-3

// StatusMonitor periodically checks the session population and emits events on changes
type StatusMonitor struct {
	eventManager *events.Manager
	registry     *stability.SessionRegistry
	log          zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once

	// Track previous state
	last    sessionSummary
	checked bool
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(eventManager *events.Manager, registry *stability.SessionRegistry, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		eventManager: eventManager,
		registry:     registry,
		log:          log.With().Str("component", "status_monitor").Logger(),
		stop:         make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop ends monitoring. Safe to call more than once.
func (m *StatusMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// monitor runs the periodic monitoring loop
func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Do initial check
	m.checkStatus()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkStatus()
		}
	}
}

// checkStatus emits SYSTEM_STATUS_CHANGED when the session summary moved.
// Returns true if an event was emitted.
func (m *StatusMonitor) checkStatus() bool {
	if m.registry == nil {
		return false
	}

	cur := summarize(m.registry.List())
	if m.checked && !changed(m.last, cur) {
		return false
	}
	m.last, m.checked = cur, true

	m.log.Debug().
		Int("sessions", cur.count).
		Float64("mean_coherence", cur.meanCoherence).
		Msg("System status changed")

	if m.eventManager != nil {
		m.eventManager.EmitTyped("status_monitor", &events.SystemStatusChangedData{
			Sessions:      cur.count,
			MeanCoherence: cur.meanCoherence,
			Corrections:   cur.corrections,
		})
	}
	return true
}

func changed(a, b sessionSummary) bool {
	return a.count != b.count ||
		a.corrections != b.corrections ||
		a.leaking != b.leaking ||
		math.Abs(a.meanCoherence-b.meanCoherence) >= coherenceEpsilon
}
