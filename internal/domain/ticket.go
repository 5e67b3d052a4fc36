package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketPriorities lists every priority from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// Ticket is a reported hostel issue.
type Ticket struct {
	ID               int64
	Title            string
	Description      string
	Category         string
	Location         Location
	Priority         TicketPriority
	Status           TicketStatus
	CreatedByUserID  int64
	CreatedByName    string
	AssignedToUserID *int64
	AssignedToName   string
	CreatedAt        time.Time
}

// IsAssigned reports whether the ticket carries an assignee.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedToUserID != nil
}

// ParseStatus normalizes and validates a status value.
func ParseStatus(raw string) (TicketStatus, error) {
	candidate := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate == "" {
		return "", fmt.Errorf("status required")
	}
	// INPROGRESS shows up in older clients.
	if candidate == "INPROGRESS" {
		return TicketStatusInProgress, nil
	}
	if !candidate.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return candidate, nil
}

// Valid reports enum membership.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParsePriority normalizes and validates a priority value.
func ParsePriority(raw string) (TicketPriority, error) {
	candidate := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate == "" {
		return "", fmt.Errorf("priority required")
	}
	if !candidate.Valid() {
		return "", fmt.Errorf("unknown priority %q", raw)
	}
	return candidate, nil
}

// Valid reports enum membership.
func (p TicketPriority) Valid() bool {
	for _, known := range TicketPriorities {
		if p == known {
			return true
		}
	}
	return false
}
