package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/query"
)

// DashboardView is what the triage dashboard renders.
type DashboardView struct {
	Page  domain.TicketPage
	Stats domain.Stats
	// StatsErr is set when the summary could not be loaded. The page is still valid.
	StatsErr error
}

// DashboardService loads the ticket page and the summary side by side.
type DashboardService struct {
	queries *QueryService
	stats   *StatsService
	tickets *TicketService
	logger  *zap.Logger
}

// NewDashboardService builds the service. tickets may be nil; when set, its
// collection follows the loaded page.
func NewDashboardService(queries *QueryService, stats *StatsService, tickets *TicketService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{queries: queries, stats: stats, tickets: tickets, logger: logger}
}

// Load fetches the page and the summary concurrently. A failed summary never
// fails the load; only a failed page does.
func (d *DashboardService) Load(ctx context.Context, params query.ListParams) (DashboardView, error) {
	var (
		wg       sync.WaitGroup
		stats    domain.Stats
		statsErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		stats, statsErr = d.stats.GetStats(ctx)
	}()

	page, err := d.queries.ListTickets(ctx, params)
	wg.Wait()
	if err != nil {
		return DashboardView{}, err
	}
	if statsErr != nil {
		d.logger.Warn("stats unavailable", zap.Error(statsErr))
	}
	if d.tickets != nil {
		d.tickets.Replace(page.Items)
	}
	return DashboardView{Page: page, Stats: stats, StatsErr: statsErr}, nil
}
