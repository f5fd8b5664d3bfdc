package di

import (
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/events"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/metrics"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
)

const eventModule = "stability"

// sessionListener forwards registry lifecycle changes to events and metrics
type sessionListener struct {
	events  *events.Manager
	metrics *metrics.Metrics
}

// NewSessionListener creates a stability.SessionListener publishing to the
// event manager and metrics. Either may be nil.
func NewSessionListener(em *events.Manager, m *metrics.Metrics) stability.SessionListener {
	return &sessionListener{events: em, metrics: m}
}

func (l *sessionListener) SessionCreated(info stability.SessionInfo) {
	if l.metrics != nil {
		l.metrics.SessionCreated(info.ID, info.Coherence)
	}
	if l.events != nil {
		l.events.EmitTyped(eventModule, &events.SessionCreatedData{
			SessionID: info.ID,
			Seed:      info.Seed,
			State:     info.State,
			Coherence: info.Coherence,
		})
	}
}

func (l *sessionListener) SessionRun(info stability.SessionInfo, report stability.Report) {
	if l.metrics != nil {
		l.metrics.SessionRun(info.ID, report.Steps, report.Corrections, report.Coherence)
	}
	if l.events != nil {
		l.events.EmitTyped(eventModule, &events.SessionRunData{
			SessionID:   info.ID,
			Steps:       report.Steps,
			Corrections: report.Corrections,
			Coherence:   report.Coherence,
			State:       info.State,
			TotalSteps:  info.TotalSteps,
		})
	}
}

func (l *sessionListener) LeakCorrected(sessionID string, ev stability.CorrectionEvent) {
	if l.metrics != nil {
		l.metrics.LeakCorrected()
	}
	if l.events != nil {
		l.events.EmitTyped(eventModule, &events.LeakCorrectedData{
			SessionID:   sessionID,
			Step:        ev.Step,
			Coherence:   ev.Coherence,
			Corrections: ev.Corrections,
		})
	}
}

func (l *sessionListener) SessionDeleted(sessionID string) {
	if l.metrics != nil {
		l.metrics.SessionDeleted(sessionID)
	}
	if l.events != nil {
		l.events.EmitTyped(eventModule, &events.SessionDeletedData{SessionID: sessionID})
	}
}
