package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// DefaultPageSize is used when a caller leaves PageSize unset.
const DefaultPageSize = 10

// StatusAll selects every status in client-side filters.
const StatusAll = "ALL"

// ListParams describes one server-side ticket listing.
type ListParams struct {
	// Status filters by lifecycle state. Empty means no filter.
	Status   domain.TicketStatus
	Page     int
	PageSize int
}

// Normalized returns a copy with page and size brought into range.
func (p ListParams) Normalized() ListParams {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Values encodes the listing as query parameters. An empty status is left out
// entirely rather than sent as "status=".
func (p ListParams) Values() url.Values {
	p = p.Normalized()
	values := url.Values{}
	if p.Status != "" {
		values.Set("status", string(p.Status))
	}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("size", strconv.Itoa(p.PageSize))
	return values
}

// ClampPage keeps page inside [0, totalPages-1]. A non-positive totalPages means
// the count is unknown and only the lower bound applies.
func ClampPage(page, totalPages int) int {
	if page < 0 {
		return 0
	}
	if totalPages > 0 && page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// SearchWithinPage narrows an already-fetched page by a case-insensitive
// substring. The input page is never modified and TotalPages is preserved.
func SearchWithinPage(page domain.TicketPage, term string) domain.TicketPage {
	needle := strings.ToLower(term)
	result := page
	result.Items = make([]domain.Ticket, 0, len(page.Items))
	for _, ticket := range page.Items {
		if needle == "" || matches(ticket, needle) {
			result.Items = append(result.Items, ticket)
		}
	}
	return result
}

func matches(ticket domain.Ticket, needle string) bool {
	fields := []string{
		ticket.Title,
		strconv.FormatInt(ticket.ID, 10),
		ticket.Category,
		ticket.CreatedByName,
		ticket.Location.String(),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterByStatus keeps tickets in the given status. "" and "ALL" keep everything.
func FilterByStatus(tickets []domain.Ticket, status string) []domain.Ticket {
	wanted := strings.ToUpper(strings.TrimSpace(status))
	if wanted == "" || wanted == StatusAll {
		return append([]domain.Ticket(nil), tickets...)
	}
	if parsed, err := domain.ParseStatus(wanted); err == nil {
		wanted = string(parsed)
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if string(ticket.Status) == wanted {
			out = append(out, ticket)
		}
	}
	return out
}
