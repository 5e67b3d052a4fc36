package domain

// allowedTransitions is the forward-only lifecycle graph. OPEN may skip straight to
// RESOLVED or CLOSED when staff update status without assigning.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusAssigned, TicketStatusResolved, TicketStatusClosed},
	TicketStatusAssigned:   {TicketStatusAssigned, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed},
	TicketStatusClosed:     {},
}

// IsValidTransition reports whether next is reachable from current in one step.
// ASSIGNED -> ASSIGNED is allowed so reassignment stays legal.
func IsValidTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanAssign reports whether a ticket in the given status may be (re)assigned.
func CanAssign(current TicketStatus) bool {
	return current == TicketStatusOpen || current == TicketStatusAssigned
}

// IsTerminal reports whether no further transitions are accepted.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}
