package service

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/query"
)

// FoldOptions controls how statuses are grouped when counting.
type FoldOptions struct {
	// AssignedAsInProgress counts ASSIGNED tickets as in progress instead of
	// reporting them separately.
	AssignedAsInProgress bool
}

// FoldStats counts tickets by status. Tickets with an unrecognized status are
// included in the total only.
func FoldStats(tickets []domain.Ticket, opts FoldOptions) domain.Stats {
	stats := domain.Stats{TotalTickets: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.OpenTickets++
		case domain.TicketStatusAssigned:
			if opts.AssignedAsInProgress {
				stats.InProgressTickets++
			} else {
				stats.AssignedTickets++
			}
		case domain.TicketStatusInProgress:
			stats.InProgressTickets++
		case domain.TicketStatusResolved:
			stats.ResolvedTickets++
		case domain.TicketStatusClosed:
			stats.ClosedTickets++
		}
	}
	return stats
}

// Group applies the status grouping to counts reported by the backend.
func (o FoldOptions) Group(stats domain.Stats) domain.Stats {
	if o.AssignedAsInProgress {
		stats.InProgressTickets += stats.AssignedTickets
		stats.AssignedTickets = 0
	}
	return stats
}

// StatsService loads summary counts, preferring the backend's summary endpoint.
type StatsService struct {
	api    API
	opts   FoldOptions
	logger *zap.Logger
	seq    query.Sequencer

	mu       sync.RWMutex
	snapshot domain.Stats
	loaded   bool
}

// NewStatsService builds the service.
func NewStatsService(api API, opts FoldOptions, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{api: api, opts: opts, logger: logger}
}

// GetStats recomputes the summary. When the summary endpoint fails with
// anything other than an auth error, the full ticket list is fetched and folded.
func (s *StatsService) GetStats(ctx context.Context) (domain.Stats, error) {
	token, callCtx, cancel := s.seq.Begin(ctx)
	defer cancel()

	stats, err := s.fetch(callCtx)
	if !s.seq.IsLatest(token) {
		return domain.Stats{}, ErrStaleResponse
	}
	if err != nil {
		return domain.Stats{}, err
	}
	if !s.seq.Commit(token, func() {
		s.mu.Lock()
		s.snapshot = stats
		s.loaded = true
		s.mu.Unlock()
	}) {
		return domain.Stats{}, ErrStaleResponse
	}
	return stats, nil
}

// Snapshot returns the latest committed summary.
func (s *StatsService) Snapshot() (domain.Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.loaded
}

func (s *StatsService) fetch(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := s.api.Do(ctx, http.MethodGet, endpointAdminStats, nil, &stats)
	if err == nil {
		return s.opts.Group(stats), nil
	}
	if gateway.IsAuth(err) || !gateway.IsAPI(err) {
		return domain.Stats{}, err
	}

	s.logger.Info("stats endpoint unavailable, folding ticket list",
		zap.Int("status", gateway.StatusCode(err)))
	tickets, listErr := fetchTickets(ctx, s.api, endpointTickets)
	if listErr != nil {
		return domain.Stats{}, listErr
	}
	return FoldStats(tickets, s.opts), nil
}
