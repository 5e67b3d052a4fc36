package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/gateway"
)

// API is the subset of the gateway client the services depend on.
type API interface {
	Request(ctx context.Context, method, endpoint string, body any, headers http.Header) (*gateway.Payload, error)
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// Backend endpoints.
const (
	endpointLogin        = "/api/auth/login"
	endpointRegister     = "/api/auth/register"
	endpointAdminTickets = "/api/admin/tickets"
	endpointAdminStats   = "/api/admin/tickets/stats"
	endpointTickets      = "/api/tickets"
)

// fetchTickets reads a bare ticket array from endpoint.
func fetchTickets(ctx context.Context, api API, endpoint string) ([]domain.Ticket, error) {
	var resp []dto.TicketResponse
	if err := api.Do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return dto.TicketsToDomain(resp), nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
