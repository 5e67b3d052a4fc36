package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/desk"
	"github.com/campusfix/hostel-desk/internal/domain"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *desk.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *desk.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), domain.NewUserRequest{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		StaffID:        req.StaffID,
		Specialization: req.Specialization,
		AdminKey:       req.AdminKey,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, _, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}
