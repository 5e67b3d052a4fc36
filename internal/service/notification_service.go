package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/events"
)

// NotificationService turns domain events into short user-facing notices.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	sink       func(message string)
}

// NewNotificationService creates the service. sink receives each rendered
// notice and may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, sink func(string)) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		sink:       sink,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionStarted)
	n.dispatcher.Subscribe(events.EventSessionEnded, n.handleSessionEnded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.notify(fmt.Sprintf("Ticket #%d created", event.TicketID))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	message := fmt.Sprintf("Ticket #%d assigned", event.TicketID)
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok {
		assignee := payload.AssigneeName
		if assignee == "" {
			assignee = fmt.Sprintf("staff %d", payload.AssigneeUserID)
		}
		message = fmt.Sprintf("Ticket #%d assigned to %s", event.TicketID, assignee)
	}
	n.notify(message)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		n.notify(fmt.Sprintf("Status updated to %s", payload.NewStatus))
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionStarted(_ context.Context, event events.Event) error {
	n.logger.Info("SessionStarted", zap.Int64("user_id", event.Actor.UserID), zap.String("role", string(event.Actor.Role)))
	if payload, ok := event.Payload.(events.SessionPayload); ok && payload.Name != "" {
		n.notify("Welcome, " + payload.Name)
	}
	return nil
}

func (n *NotificationService) handleSessionEnded(_ context.Context, event events.Event) error {
	n.logger.Info("SessionEnded", zap.Int64("user_id", event.Actor.UserID))
	if payload, ok := event.Payload.(events.SessionPayload); ok && payload.Reason != "" {
		n.notify("Session ended: " + payload.Reason + ". Please log in again.")
		return nil
	}
	n.notify("Logged out")
	return nil
}

func (n *NotificationService) notify(message string) {
	if n.sink != nil {
		n.sink(message)
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
