package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/desk"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

// AdminTicketsHandler serves the triage endpoints for staff and admins.
type AdminTicketsHandler struct {
	tickets *desk.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *desk.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{tickets: ticketService}
}

// ListTickets GET /api/admin/tickets?status=&page=&size=.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, err := h.tickets.ListPage(c.UserContext(), desk.PageRequest{
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 0),
		Size:   c.QueryInt("size", 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketPageResponse{
		Content:       ticketResponses(page.Items),
		TotalPages:    page.TotalPages,
		TotalElements: page.Total,
		Number:        page.Page,
		Size:          page.Size,
	})
}

// Stats GET /api/admin/tickets/stats.
func (h *AdminTicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tickets.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Assign PUT /api/admin/tickets/:id/assign. The status in the body is ignored;
// assignment always lands on ASSIGNED.
func (h *AdminTicketsHandler) Assign(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Assign(c.UserContext(), user, id, req.Assignee())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus PUT /api/admin/tickets/:id/status.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), user, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}
