package desk

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/auth"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/repository"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

const minPasswordLength = 6

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	adminKey   string
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	// AdminKey, when set, must accompany every ADMIN registration.
	AdminKey string
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		adminKey:   deps.AdminKey,
		logger:     logger,
	}
}

// Register creates a new account. Role defaults to STUDENT.
func (s *AuthService) Register(ctx context.Context, req domain.NewUserRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	case email == "":
		return nil, apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	case len(req.Password) < minPasswordLength:
		return nil, apperrors.NewValidationError("password must be at least 6 characters", map[string]any{"field": "password"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("email is invalid", map[string]any{"field": "email"})
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	role, err := domain.ParseRole(string(role))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "role"})
	}
	if role == domain.RoleAdmin && s.adminKey != "" &&
		subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(s.adminKey)) != 1 {
		return nil, apperrors.NewForbidden("admin key required to register an admin")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		StaffID:        strings.TrimSpace(req.StaffID),
		Specialization: strings.TrimSpace(req.Specialization),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login authenticates a user and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	ok, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
