package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/gateway"
)

// TicketLoader fetches the ticket set backing the in-memory collection.
type TicketLoader func(ctx context.Context) ([]domain.Ticket, error)

// TicketService validates ticket mutations before they are sent and reconciles
// the backend's answer into a local, most-recent-first collection.
type TicketService struct {
	api        API
	sessions   gateway.SessionProvider
	dispatcher events.Dispatcher
	logger     *zap.Logger
	slots      *ActionSlots
	strict     bool
	loader     TicketLoader

	mu      sync.RWMutex
	tickets []domain.Ticket
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	API        API
	Sessions   gateway.SessionProvider
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Slots guards against double submission. A fresh set is created when nil.
	Slots *ActionSlots
	// StrictTransitions rejects status changes outside the lifecycle graph
	// locally instead of leaving the decision to the backend.
	StrictTransitions bool
	// Loader refills the collection after a mutation whose ticket is not cached.
	// Defaults to the full ticket list.
	Loader TicketLoader
}

// TicketCreateInput describes a new ticket as entered by a student.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Location    domain.Location
	// Priority defaults to MEDIUM when empty.
	Priority string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		api:        deps.API,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		slots:      deps.Slots,
		strict:     deps.StrictTransitions,
		loader:     deps.Loader,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.slots == nil {
		s.slots = NewActionSlots()
	}
	if s.loader == nil {
		s.loader = s.fetchAll
	}
	return s
}

// SetLoader replaces the loader used for reloads.
func (s *TicketService) SetLoader(loader TicketLoader) {
	if loader == nil {
		loader = s.fetchAll
	}
	s.mu.Lock()
	s.loader = loader
	s.mu.Unlock()
}

// Tickets returns a copy of the local collection, most recent first.
func (s *TicketService) Tickets() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ticket(nil), s.tickets...)
}

// Ticket looks a ticket up in the local collection.
func (s *TicketService) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// Replace swaps the whole collection, e.g. after a list fetch.
func (s *TicketService) Replace(tickets []domain.Ticket) {
	s.mu.Lock()
	s.tickets = append([]domain.Ticket(nil), tickets...)
	s.mu.Unlock()
}

// Reload refetches the collection through the configured loader.
func (s *TicketService) Reload(ctx context.Context) error {
	s.mu.RLock()
	loader := s.loader
	s.mu.RUnlock()

	tickets, err := loader(ctx)
	if err != nil {
		return err
	}
	s.Replace(tickets)
	return nil
}

// CreateTicket validates and submits a new ticket on behalf of the logged-in user.
// The created ticket is prepended to the collection.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return nil, gateway.NewValidationError("title", "title required")
	case strings.TrimSpace(input.Description) == "":
		return nil, gateway.NewValidationError("description", "description required")
	case strings.TrimSpace(input.Category) == "":
		return nil, gateway.NewValidationError("category", "category required")
	case input.Location.IsZero():
		return nil, gateway.NewValidationError("location", "location required")
	}

	priority := domain.TicketPriorityMedium
	if strings.TrimSpace(input.Priority) != "" {
		parsed, err := domain.ParsePriority(input.Priority)
		if err != nil {
			return nil, gateway.NewValidationError("priority", err.Error())
		}
		priority = parsed
	}

	current, ok := s.currentSession()
	if !ok {
		return nil, gateway.NewValidationError("session", "login required to create a ticket")
	}

	req := dto.CreateTicketRequest{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Category:        strings.TrimSpace(input.Category),
		Priority:        priority,
		CreatedByUserID: current.UserID,
	}
	req.ApplyLocation(input.Location)

	var created domain.Ticket
	err := s.slots.Run("create", func() error {
		var resp dto.TicketResponse
		if err := s.api.Do(ctx, http.MethodPost, endpointTickets, req, &resp); err != nil {
			return err
		}
		created = resp.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tickets = append([]domain.Ticket{created}, s.tickets...)
	s.mu.Unlock()

	s.logger.Info("ticket created", zap.Int64("ticket_id", created.ID), zap.String("priority", string(created.Priority)))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCreated, created.ID, events.ActorFromSession(current),
		events.TicketCreatedPayload{
			Title:    created.Title,
			Category: created.Category,
			Priority: created.Priority,
			Location: created.Location.String(),
		}))
	return &created, nil
}

// AssignTicket assigns a ticket to a staff member. The request always moves the
// ticket to ASSIGNED; assigning again simply replaces the assignee.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID int64, staffUserID string) (*domain.Ticket, error) {
	if ticketID <= 0 {
		return nil, gateway.NewValidationError("ticketId", "ticket id required")
	}
	staffUserID = strings.TrimSpace(staffUserID)
	if staffUserID == "" {
		return nil, gateway.NewValidationError("staffUserId", "staff id required")
	}
	staffID, err := strconv.ParseInt(staffUserID, 10, 64)
	if err != nil {
		return nil, gateway.NewValidationError("staffUserId", "staff id must be numeric")
	}
	if staffID <= 0 {
		return nil, gateway.NewValidationError("staffUserId", "staff id must be positive")
	}

	previous, known := s.Ticket(ticketID)
	if known {
		if previous.Status.IsTerminal() {
			return nil, gateway.NewValidationError("status", fmt.Sprintf("ticket %d is closed", ticketID))
		}
		if s.strict && !domain.CanAssign(previous.Status) {
			return nil, gateway.NewValidationError("status",
				fmt.Sprintf("ticket %d cannot be assigned while %s", ticketID, previous.Status))
		}
	}

	req := dto.AssignTicketRequest{
		StaffUserID: dto.FlexibleID(staffID),
		StaffID:     dto.FlexibleID(staffID),
		Status:      domain.TicketStatusAssigned,
	}
	endpoint := fmt.Sprintf("%s/%d/assign", endpointAdminTickets, ticketID)

	updated, err := s.mutate(ctx, slotFor("assign", ticketID), http.MethodPut, endpoint, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket assigned", zap.Int64("ticket_id", ticketID), zap.Int64("staff_user_id", staffID))
	actor, _ := s.currentSession()
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketAssigned, ticketID, events.ActorFromSession(actor),
		events.TicketAssignedPayload{
			AssigneeUserID: staffID,
			AssigneeName:   updated.AssignedToName,
			Reassigned:     known && previous.IsAssigned(),
		}))
	return updated, nil
}

// UpdateStatus moves a ticket to newStatus. Out-of-order moves are left for the
// backend to judge unless strict transitions are enabled; a ticket already known
// to be CLOSED is always rejected.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID int64, newStatus string) (*domain.Ticket, error) {
	if ticketID <= 0 {
		return nil, gateway.NewValidationError("ticketId", "ticket id required")
	}
	status, err := domain.ParseStatus(newStatus)
	if err != nil {
		return nil, gateway.NewValidationError("status", err.Error())
	}

	previous, known := s.Ticket(ticketID)
	if known {
		if previous.Status.IsTerminal() {
			return nil, gateway.NewValidationError("status", fmt.Sprintf("ticket %d is closed", ticketID))
		}
		if s.strict && !domain.IsValidTransition(previous.Status, status) {
			return nil, gateway.NewValidationError("status",
				fmt.Sprintf("cannot move ticket %d from %s to %s", ticketID, previous.Status, status))
		}
	}

	endpoint := fmt.Sprintf("%s/%d/status", endpointAdminTickets, ticketID)
	updated, err := s.mutate(ctx, slotFor("status", ticketID), http.MethodPut, endpoint, dto.UpdateStatusRequest{Status: string(status)})
	if err != nil {
		return nil, err
	}

	payload := events.TicketStatusChangedPayload{NewStatus: updated.Status}
	if known {
		payload.OldStatus = previous.Status
	}
	s.logger.Info("ticket status updated",
		zap.Int64("ticket_id", ticketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(updated.Status)))
	actor, _ := s.currentSession()
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketStatusChanged, ticketID, events.ActorFromSession(actor), payload))
	return updated, nil
}

// mutate sends one mutation under slot and reconciles the returned ticket.
func (s *TicketService) mutate(ctx context.Context, slot, method, endpoint string, body any) (*domain.Ticket, error) {
	var updated domain.Ticket
	err := s.slots.Run(slot, func() error {
		var resp dto.TicketResponse
		if err := s.api.Do(ctx, method, endpoint, body, &resp); err != nil {
			return err
		}
		updated = resp.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.reconcile(ctx, updated)
	return &updated, nil
}

// reconcile patches the ticket in place by id, or reloads the collection when
// it is not cached. A failed reload does not undo the successful mutation.
func (s *TicketService) reconcile(ctx context.Context, updated domain.Ticket) {
	if s.patch(updated) {
		return
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload after mutation failed", zap.Int64("ticket_id", updated.ID), zap.Error(err))
	}
}

func (s *TicketService) patch(updated domain.Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == updated.ID {
			s.tickets[i] = updated
			return true
		}
	}
	return false
}

func (s *TicketService) currentSession() (domain.Session, bool) {
	if s.sessions == nil {
		return domain.Session{}, false
	}
	return s.sessions.Current()
}

func (s *TicketService) fetchAll(ctx context.Context) ([]domain.Ticket, error) {
	return fetchTickets(ctx, s.api, endpointTickets)
}
