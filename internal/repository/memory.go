package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// MemoryStore keeps users and tickets in process memory. It backs the
// reference backend when no database is configured, and the end-to-end tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	tickets      map[int64]domain.Ticket
	nextUserID   int64
	nextTicketID int64
	now          func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]domain.User),
		tickets: make(map[int64]domain.Ticket),
		now:     time.Now,
	}
}

// Users returns the store's UserRepository view.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Tickets returns the store's TicketRepository view.
func (s *MemoryStore) Tickets() TicketRepository { return memoryTickets{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range r.s.users {
		if existing.Email == email {
			return ErrDuplicate
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.Email = email
	user.CreatedAt = r.s.now().UTC()
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

type memoryTickets struct{ s *MemoryStore }

func (r memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	ticket.CreatedAt = r.s.now().UTC()
	r.s.tickets[ticket.ID] = *ticket
	ticket.CreatedByName = r.s.userName(ticket.CreatedByUserID)
	return nil
}

func (r memoryTickets) Update(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != expected {
		return ErrStaleStatus
	}
	stored.Status = ticket.Status
	stored.AssignedToUserID = nil
	if ticket.AssignedToUserID != nil {
		assignee := *ticket.AssignedToUserID
		stored.AssignedToUserID = &assignee
	}
	r.s.tickets[ticket.ID] = stored
	return nil
}

func (r memoryTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	ticket = r.s.withNames(ticket)
	return &ticket, nil
}

func (r memoryTickets) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, ticket := range r.s.tickets {
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		if filter.CreatedByUserID > 0 && ticket.CreatedByUserID != filter.CreatedByUserID {
			continue
		}
		matches = append(matches, r.s.withNames(ticket))
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	total := int64(len(matches))
	if filter.Limit <= 0 {
		return matches, total, nil
	}
	if filter.Offset >= len(matches) {
		return []domain.Ticket{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[filter.Offset:end], total, nil
}

func (r memoryTickets) Stats(_ context.Context) (domain.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stats := domain.Stats{TotalTickets: len(r.s.tickets)}
	for _, ticket := range r.s.tickets {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.OpenTickets++
		case domain.TicketStatusAssigned:
			stats.AssignedTickets++
		case domain.TicketStatusInProgress:
			stats.InProgressTickets++
		case domain.TicketStatusResolved:
			stats.ResolvedTickets++
		case domain.TicketStatusClosed:
			stats.ClosedTickets++
		}
	}
	return stats, nil
}

// withNames fills the display names from the user table. Caller holds mu.
func (s *MemoryStore) withNames(ticket domain.Ticket) domain.Ticket {
	ticket.CreatedByName = s.userName(ticket.CreatedByUserID)
	ticket.AssignedToName = ""
	if ticket.AssignedToUserID != nil {
		ticket.AssignedToName = s.userName(*ticket.AssignedToUserID)
	}
	return ticket
}

func (s *MemoryStore) userName(id int64) string {
	if user, ok := s.users[id]; ok {
		return user.Name
	}
	return ""
}
