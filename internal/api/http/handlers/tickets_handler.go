package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/auth"
	"github.com/campusfix/hostel-desk/internal/desk"
	"github.com/campusfix/hostel-desk/internal/domain"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

// TicketsHandler manages the ticket endpoints open to every signed-in user.
type TicketsHandler struct {
	tickets *desk.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *desk.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// CreateTicket POST /api/tickets. The caller is always recorded as the creator.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), user, desk.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    dto.LocationFromWire(req.Location, req.Block, "", req.RoomNo),
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListAll(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponses(tickets))
}

// ListByUser GET /api/tickets/by-user/:id.
func (h *TicketsHandler) ListByUser(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	userID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("user id must be numeric", map[string]any{"field": "id"})
	}
	tickets, err := h.tickets.ListByUser(c.UserContext(), user, int64(userID))
	if err != nil {
		return err
	}
	return c.JSON(ticketResponses(tickets))
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal.User, nil
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return items
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("ticket id must be a positive number", map[string]any{"field": "id"})
	}
	return int64(id), nil
}
