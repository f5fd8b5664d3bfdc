// Package events provides in-process event publication for session lifecycle changes.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	SessionCreated EventType = "SESSION_CREATED"
	SessionRun     EventType = "SESSION_RUN"
	LeakCorrected  EventType = "LEAK_CORRECTED"
	SessionDeleted EventType = "SESSION_DELETED"
	DriftCompleted EventType = "DRIFT_COMPLETED"
	ErrorOccurred  EventType = "ERROR_OCCURRED"

	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
)

// AllTypes lists every event type, in declaration order
func AllTypes() []EventType {
	return []EventType{
		SessionCreated,
		SessionRun,
		LeakCorrected,
		SessionDeleted,
		DriftCompleted,
		ErrorOccurred,
		SystemStatusChanged,
	}
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
