package domain

// TicketPage is one page of a server-side listing.
type TicketPage struct {
	Items     []Ticket
	PageIndex int
	PageSize  int
	// TotalPages is the page count reported by the backend (one-based).
	TotalPages int
}

// LastPage returns the highest valid zero-based page index.
func (p TicketPage) LastPage() int {
	if p.TotalPages <= 1 {
		return 0
	}
	return p.TotalPages - 1
}

// Stats is a derived count summary over the ticket set.
type Stats struct {
	TotalTickets      int `json:"totalTickets"`
	OpenTickets       int `json:"openTickets"`
	AssignedTickets   int `json:"assignedTickets"`
	InProgressTickets int `json:"inProgressTickets"`
	ResolvedTickets   int `json:"resolvedTickets"`
	ClosedTickets     int `json:"closedTickets"`
}
