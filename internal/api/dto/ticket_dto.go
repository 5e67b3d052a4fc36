package dto

import (
	"strings"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// CreateTicketRequest payload. Location travels either as free text or as block/roomNo.
type CreateTicketRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	Location        string                `json:"location,omitempty"`
	Block           string                `json:"block,omitempty"`
	RoomNo          string                `json:"roomNo,omitempty"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatedByUserID int64                 `json:"createdByUserId"`
}

// AssignTicketRequest payload. Both staff id spellings are sent because deployed
// backends disagree on the field name.
type AssignTicketRequest struct {
	StaffUserID FlexibleID          `json:"staffUserId,omitempty"`
	StaffID     FlexibleID          `json:"staffId,omitempty"`
	Status      domain.TicketStatus `json:"status"`
}

// Assignee returns whichever staff id was supplied.
func (r AssignTicketRequest) Assignee() int64 {
	if r.StaffUserID != 0 {
		return int64(r.StaffUserID)
	}
	return int64(r.StaffID)
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID               int64                 `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Category         string                `json:"category"`
	Location         string                `json:"location,omitempty"`
	Block            string                `json:"block,omitempty"`
	BlockName        string                `json:"blockName,omitempty"`
	RoomNo           string                `json:"roomNo,omitempty"`
	Priority         domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus   `json:"status"`
	CreatedByUserID  int64                 `json:"createdByUserId"`
	CreatedByName    string                `json:"createdByName,omitempty"`
	AssignedToUserID *int64                `json:"assignedToUserId,omitempty"`
	AssignedToName   string                `json:"assignedToName,omitempty"`
	CreatedAt        WireTime              `json:"createdAt"`
}

// TicketPageResponse mirrors a paged listing.
type TicketPageResponse struct {
	Content       []TicketResponse `json:"content"`
	TotalPages    int              `json:"totalPages"`
	TotalElements int64            `json:"totalElements"`
	Number        int              `json:"number"`
	Size          int              `json:"size"`
}

// LocationFromWire resolves the loosely-typed wire fields into a Location.
func LocationFromWire(location, block, blockName, roomNo string) domain.Location {
	return domain.LocationFromParts(location, firstNonBlank(block, blockName), roomNo)
}

// ApplyLocation writes a Location into the create payload.
func (r *CreateTicketRequest) ApplyLocation(loc domain.Location) {
	switch loc.Kind() {
	case domain.LocationRoom:
		r.Block = loc.Block()
		r.RoomNo = loc.RoomNo()
	case domain.LocationFreeform:
		r.Location = loc.Text()
	}
}

// ToDomain converts the wire ticket.
func (t TicketResponse) ToDomain() domain.Ticket {
	status := t.Status
	if parsed, err := domain.ParseStatus(string(t.Status)); err == nil {
		status = parsed
	}
	return domain.Ticket{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Category:         t.Category,
		Location:         LocationFromWire(t.Location, t.Block, t.BlockName, t.RoomNo),
		Priority:         domain.TicketPriority(strings.ToUpper(string(t.Priority))),
		Status:           status,
		CreatedByUserID:  t.CreatedByUserID,
		CreatedByName:    t.CreatedByName,
		AssignedToUserID: t.AssignedToUserID,
		AssignedToName:   t.AssignedToName,
		CreatedAt:        t.CreatedAt.Time,
	}
}

// NewTicketResponse converts a domain ticket to its wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Category:         ticket.Category,
		Priority:         ticket.Priority,
		Status:           ticket.Status,
		CreatedByUserID:  ticket.CreatedByUserID,
		CreatedByName:    ticket.CreatedByName,
		AssignedToUserID: ticket.AssignedToUserID,
		AssignedToName:   ticket.AssignedToName,
		CreatedAt:        WireTime{Time: ticket.CreatedAt},
	}
	switch ticket.Location.Kind() {
	case domain.LocationRoom:
		resp.Block = ticket.Location.Block()
		resp.RoomNo = ticket.Location.RoomNo()
	case domain.LocationFreeform:
		resp.Location = ticket.Location.Text()
	}
	return resp
}

// TicketsToDomain converts a wire slice.
func TicketsToDomain(items []TicketResponse) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToDomain())
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
