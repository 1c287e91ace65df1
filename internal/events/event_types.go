package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCandidateCreated       EventType = "candidate_created"
	EventCandidateStatusChanged EventType = "candidate_status_changed"
	EventCandidateAssigned      EventType = "candidate_assigned"
	EventCallLogged             EventType = "call_logged"
	EventExportCompleted        EventType = "export_completed"
)

// Event represents a pipeline event emitted by services after a successful write.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id,omitempty"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, actorID, entityID int64, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// CandidateCreatedPayload payload.
type CandidateCreatedPayload struct {
	Status domain.CandidateStatus `json:"status"`
	Source string                 `json:"source,omitempty"`
}

// CandidateStatusChangedPayload payload.
type CandidateStatusChangedPayload struct {
	From domain.CandidateStatus `json:"from"`
	To   domain.CandidateStatus `json:"to"`
}

// CandidateAssignedPayload payload. A nil RecruiterID means unassigned.
type CandidateAssignedPayload struct {
	RecruiterID *int64 `json:"recruiter_id"`
}

// CallLoggedPayload payload.
type CallLoggedPayload struct {
	CandidateID int64           `json:"candidate_id"`
	CallType    domain.CallType `json:"call_type"`
	Outcome     string          `json:"outcome,omitempty"`
}

// ExportCompletedPayload payload.
type ExportCompletedPayload struct {
	Entity string `json:"entity"`
	Format string `json:"format"`
	Rows   int    `json:"rows"`
}
