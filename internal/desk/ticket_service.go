package desk

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/repository"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TicketService enforces the ticket lifecycle on the server side.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	Tickets    repository.TicketRepository
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Location    domain.Location
	Priority    domain.TicketPriority
}

// PageRequest selects one page of the admin listing.
type PageRequest struct {
	// Status filters by lifecycle state. Empty or "ALL" means any.
	Status string
	Page   int
	Size   int
}

// TicketPage is one page of results plus the total match count.
type TicketPage struct {
	Items      []domain.Ticket
	Page       int
	Size       int
	Total      int64
	TotalPages int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.Tickets,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket files a ticket on behalf of the caller.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	ticket := &domain.Ticket{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Category:        strings.TrimSpace(input.Category),
		Location:        input.Location,
		Priority:        input.Priority,
		Status:          domain.TicketStatusOpen,
		CreatedByUserID: caller.ID,
	}
	required := []struct{ field, value string }{
		{"title", ticket.Title},
		{"description", ticket.Description},
		{"category", ticket.Category},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperrors.NewValidationError(r.field+" is required", map[string]any{"field": r.field})
		}
	}
	if ticket.Location.IsZero() {
		return nil, apperrors.NewValidationError("location or block is required", map[string]any{"field": "location"})
	}

	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	priority, err := domain.ParsePriority(string(ticket.Priority))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "priority"})
	}
	ticket.Priority = priority

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.ID, actorOf(caller), events.TicketCreatedPayload{
		Title:    ticket.Title,
		Category: ticket.Category,
		Priority: ticket.Priority,
		Location: ticket.Location.String(),
	}))
	return ticket, nil
}

// ListPage returns one page of tickets, newest first.
func (s *TicketService) ListPage(ctx context.Context, req PageRequest) (TicketPage, error) {
	filter := repository.TicketFilter{}
	if raw := strings.TrimSpace(req.Status); raw != "" && !strings.EqualFold(raw, "ALL") {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return TicketPage{}, apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
		}
		filter.Status = status
	}

	page, size := normalizePage(req.Page, req.Size)
	filter.Limit = size
	filter.Offset = page * size

	items, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return TicketPage{}, apperrors.NewInternalError(err)
	}
	return TicketPage{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// ListAll returns every ticket the caller may see. Students only see their own.
func (s *TicketService) ListAll(ctx context.Context, caller *domain.User) ([]domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.TicketFilter{}
	if !caller.Role.CanTriage() {
		filter.CreatedByUserID = caller.ID
	}
	items, _, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// ListByUser returns the tickets filed by userID.
func (s *TicketService) ListByUser(ctx context.Context, caller *domain.User, userID int64) ([]domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if userID <= 0 {
		return nil, apperrors.NewValidationError("user id must be positive", map[string]any{"field": "id"})
	}
	if !caller.Role.CanTriage() && caller.ID != userID {
		return nil, apperrors.NewForbidden("students may only list their own tickets")
	}
	items, _, err := s.tickets.List(ctx, repository.TicketFilter{CreatedByUserID: userID})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// Assign hands the ticket to a staff member and moves it to ASSIGNED.
func (s *TicketService) Assign(ctx context.Context, caller *domain.User, ticketID, staffUserID int64) (*domain.Ticket, error) {
	if staffUserID <= 0 {
		return nil, apperrors.NewValidationError("staff id is required", map[string]any{"field": "staffUserId"})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, staffUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("staff user not found", map[string]any{"staffUserId": staffUserID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !assignee.Role.CanTriage() {
		return nil, apperrors.NewValidationError("assignee must be staff", map[string]any{"staffUserId": staffUserID})
	}

	previous := ticket.Status
	if !domain.CanAssign(previous) {
		return nil, apperrors.NewInvalidTransition(string(previous), string(domain.TicketStatusAssigned))
	}
	reassigned := ticket.IsAssigned()

	ticket.Status = domain.TicketStatusAssigned
	ticket.AssignedToUserID = &assignee.ID
	ticket.AssignedToName = assignee.Name
	if err := s.save(ctx, ticket, previous); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventTicketAssigned, ticket.ID, actorOf(caller), events.TicketAssignedPayload{
		AssigneeUserID: assignee.ID,
		AssigneeName:   assignee.Name,
		Reassigned:     reassigned,
	}))
	return ticket, nil
}

// UpdateStatus moves the ticket along the lifecycle graph.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID int64, rawStatus string) (*domain.Ticket, error) {
	next, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
	}
	if next == domain.TicketStatusAssigned {
		return nil, apperrors.NewValidationError("use the assign endpoint to assign a ticket", map[string]any{"field": "status"})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	previous := ticket.Status
	if !domain.IsValidTransition(previous, next) {
		return nil, apperrors.NewInvalidTransition(string(previous), string(next))
	}

	ticket.Status = next
	if err := s.save(ctx, ticket, previous); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, actorOf(caller), events.TicketStatusChangedPayload{
		OldStatus: previous,
		NewStatus: next,
	}))
	return ticket, nil
}

// Stats counts tickets per status.
func (s *TicketService) Stats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return domain.Stats{}, apperrors.NewInternalError(err)
	}
	return stats, nil
}

func (s *TicketService) getTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("ticket id must be positive", map[string]any{"field": "id"})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

func (s *TicketService) save(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	err := s.tickets.Update(ctx, ticket, expected)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleStatus):
		return apperrors.NewConflict("ticket changed concurrently; reload and retry", map[string]any{"id": ticket.ID})
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	default:
		return apperrors.NewInternalError(err)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

func actorOf(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}
