package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/query"
)

// ErrStaleResponse is returned by a list call that was superseded by a newer one.
// Its result was discarded and the snapshot left untouched.
var ErrStaleResponse = errors.New("response superseded by a newer request")

// QueryService fetches ticket listings and keeps the latest page as a snapshot.
type QueryService struct {
	api      API
	sessions gateway.SessionProvider
	logger   *zap.Logger
	pageSize int
	seq      query.Sequencer

	mu       sync.RWMutex
	snapshot domain.TicketPage
	params   query.ListParams
	loaded   bool
}

// NewQueryService builds the service. A non-positive pageSize falls back to the default.
func NewQueryService(api API, sessions gateway.SessionProvider, pageSize int, logger *zap.Logger) *QueryService {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		api:      api,
		sessions: sessions,
		logger:   logger,
		pageSize: pageSize,
		params:   query.ListParams{PageSize: pageSize},
	}
}

// ListTickets fetches one page of the admin listing. When the filter and page
// size match the committed listing, the page is clamped to its known range.
// Starting a new call
// cancels the previous one; a call that completes after being superseded
// returns ErrStaleResponse.
func (s *QueryService) ListTickets(ctx context.Context, params query.ListParams) (domain.TicketPage, error) {
	if params.PageSize <= 0 {
		params.PageSize = s.pageSize
	}
	params = params.Normalized()
	s.mu.RLock()
	if s.loaded && params.Status == s.params.Status && params.PageSize == s.params.PageSize {
		params.Page = query.ClampPage(params.Page, s.snapshot.TotalPages)
	}
	s.mu.RUnlock()

	token, callCtx, cancel := s.seq.Begin(ctx)
	defer cancel()

	var resp dto.TicketPageResponse
	err := s.api.Do(callCtx, http.MethodGet, gateway.WithQuery(endpointAdminTickets, params.Values()), nil, &resp)
	if !s.seq.IsLatest(token) {
		s.logger.Debug("discarding stale ticket page", zap.Int("page", params.Page), zap.String("status", string(params.Status)))
		return domain.TicketPage{}, ErrStaleResponse
	}
	if err != nil {
		return domain.TicketPage{}, err
	}

	page := domain.TicketPage{
		Items:      dto.TicketsToDomain(resp.Content),
		PageIndex:  params.Page,
		PageSize:   params.PageSize,
		TotalPages: resp.TotalPages,
	}
	committed := s.seq.Commit(token, func() {
		s.mu.Lock()
		s.snapshot = page
		s.params = params
		s.loaded = true
		s.mu.Unlock()
	})
	if !committed {
		return domain.TicketPage{}, ErrStaleResponse
	}
	return page, nil
}

// GoToPage reloads the current listing at page, clamped to the known page range.
func (s *QueryService) GoToPage(ctx context.Context, page int) (domain.TicketPage, error) {
	s.mu.RLock()
	params := s.params
	total := s.snapshot.TotalPages
	s.mu.RUnlock()

	params.Page = query.ClampPage(page, total)
	return s.ListTickets(ctx, params)
}

// FilterStatus reloads the listing with a new status filter from the first page.
func (s *QueryService) FilterStatus(ctx context.Context, status domain.TicketStatus) (domain.TicketPage, error) {
	s.mu.RLock()
	params := s.params
	s.mu.RUnlock()

	params.Status = status
	params.Page = 0
	return s.ListTickets(ctx, params)
}

// Reload refetches the listing with the last committed parameters and returns its items.
// It matches TicketLoader so the ticket service can refill from the current page.
func (s *QueryService) Reload(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.RLock()
	params := s.params
	s.mu.RUnlock()

	page, err := s.ListTickets(ctx, params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Snapshot returns the latest committed page.
func (s *QueryService) Snapshot() (domain.TicketPage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.loaded
}

// Params returns the parameters of the latest committed page.
func (s *QueryService) Params() query.ListParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Search narrows the latest snapshot by term without another request.
func (s *QueryService) Search(term string) domain.TicketPage {
	page, _ := s.Snapshot()
	return query.SearchWithinPage(page, term)
}

// ListAll returns every ticket visible to the caller.
func (s *QueryService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return fetchTickets(ctx, s.api, endpointTickets)
}

// ListByUser returns the tickets raised by userID.
func (s *QueryService) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	if userID <= 0 {
		return nil, gateway.NewValidationError("userId", "user id required")
	}
	return fetchTickets(ctx, s.api, fmt.Sprintf("%s/by-user/%d", endpointTickets, userID))
}

// ListMine returns the logged-in user's tickets filtered client-side by status
// ("" or "ALL" for everything).
func (s *QueryService) ListMine(ctx context.Context, status string) ([]domain.Ticket, error) {
	if s.sessions == nil {
		return nil, gateway.NewValidationError("session", "login required")
	}
	current, ok := s.sessions.Current()
	if !ok {
		return nil, gateway.NewValidationError("session", "login required")
	}
	tickets, err := s.ListByUser(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	return query.FilterByStatus(tickets, status), nil
}
