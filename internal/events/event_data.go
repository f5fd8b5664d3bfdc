package events

import (
	"encoding/json"
)

// EventData is implemented by every typed event payload
type EventData interface {
	EventType() EventType
}

// SessionCreatedData contains data for SessionCreated events
type SessionCreatedData struct {
	SessionID string  `json:"session_id"`
	Seed      uint64  `json:"seed"`
	State     string  `json:"state"`
	Coherence float64 `json:"coherence"`
}

// EventType returns the event type for SessionCreatedData
func (d *SessionCreatedData) EventType() EventType {
	return SessionCreated
}

// SessionRunData contains data for SessionRun events
type SessionRunData struct {
	SessionID   string  `json:"session_id"`
	Steps       uint32  `json:"steps"`
	Corrections uint32  `json:"corrections"`
	Coherence   float64 `json:"coherence"`
	State       string  `json:"state"`
	TotalSteps  uint64  `json:"total_steps"`
}

// EventType returns the event type for SessionRunData
func (d *SessionRunData) EventType() EventType {
	return SessionRun
}

// LeakCorrectedData contains data for LeakCorrected events
type LeakCorrectedData struct {
	SessionID   string  `json:"session_id"`
	Step        uint64  `json:"step"`
	Coherence   float64 `json:"coherence"`
	Corrections uint64  `json:"corrections"`
}

// EventType returns the event type for LeakCorrectedData
func (d *LeakCorrectedData) EventType() EventType {
	return LeakCorrected
}

// SessionDeletedData contains data for SessionDeleted events
type SessionDeletedData struct {
	SessionID string `json:"session_id"`
}

// EventType returns the event type for SessionDeletedData
func (d *SessionDeletedData) EventType() EventType {
	return SessionDeleted
}

// DriftCompletedData contains data for DriftCompleted events
type DriftCompletedData struct {
	Sessions    int    `json:"sessions"`
	Steps       uint32 `json:"steps"`
	Corrections uint64 `json:"corrections"`
}

// EventType returns the event type for DriftCompletedData
func (d *DriftCompletedData) EventType() EventType {
	return DriftCompleted
}

// SystemStatusChangedData contains data for SystemStatusChanged events
type SystemStatusChangedData struct {
	Sessions      int     `json:"sessions"`
	MeanCoherence float64 `json:"mean_coherence"`
	Corrections   uint64  `json:"corrections"`
}

// EventType returns the event type for SystemStatusChangedData
func (d *SystemStatusChangedData) EventType() EventType {
	return SystemStatusChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// toMap flattens typed data into the generic event payload
func toMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}
	return result
}

// Decode unmarshals the generic payload of e into v
func (e *Event) Decode(v interface{}) error {
	jsonBytes, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}
