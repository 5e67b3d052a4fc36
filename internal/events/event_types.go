package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventSessionStarted      EventType = "session_started"
	EventSessionEnded        EventType = "session_ended"
)

// Actor is whoever caused the event.
type Actor struct {
	UserID int64       `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, ticketID int64, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActorFromSession builds an Actor for the given session.
func ActorFromSession(session domain.Session) Actor {
	return Actor{UserID: session.UserID, Role: session.Role}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Location string                `json:"location"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeUserID int64  `json:"assignee_user_id"`
	AssigneeName   string `json:"assignee_name,omitempty"`
	Reassigned     bool   `json:"reassigned"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// SessionPayload payload for session start and end.
type SessionPayload struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	// Reason is set when a session ends for something other than logout.
	Reason string `json:"reason,omitempty"`
}
