package models

import "time"

// Event types recorded in the run log.
const (
	EventRunCompleted    = "RUN_COMPLETED"
	EventRunFailed       = "RUN_FAILED"
	EventNarrativeStored = "NARRATIVE_STORED"
	EventNarrativeFailed = "NARRATIVE_FAILED"
)

// EventTypes lists every recorded event type.
func EventTypes() []string {
	return []string{EventRunCompleted, EventRunFailed, EventNarrativeStored, EventNarrativeFailed}
}

// IsEventType reports whether t is one of EventTypes.
func IsEventType(t string) bool {
	for _, known := range EventTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RunEvent is a single log entry.
type RunEvent struct {
	EventID     string    `json:"event_id"`
	RunID       string    `json:"run_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
