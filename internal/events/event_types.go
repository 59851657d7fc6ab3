package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued        EventType = "token_issued"
	EventGrantRejected      EventType = "grant_rejected"
	EventIdentityRegistered EventType = "identity_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// GrantPayload describes a token endpoint outcome. It never carries credentials.
type GrantPayload struct {
	GrantType string `json:"grant_type"`
	ErrorCode string `json:"error_code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// IdentityRegisteredPayload payload.
type IdentityRegisteredPayload struct {
	KdfType       int `json:"kdf_type"`
	KdfIterations int `json:"kdf_iterations"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, subjectID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: at,
		Payload:   payload,
	}
}
