package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/api/dto"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/session"
)

// ErrNoCredential is returned when a login response carries no token under any known name.
var ErrNoCredential = errors.New("login response carried no credential")

// AuthService logs users in and out and owns the AuthError policy.
type AuthService struct {
	api        API
	sessions   session.Provider
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(api API, sessions session.Provider, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{api: api, sessions: sessions, dispatcher: dispatcher, logger: logger}
}

// Login exchanges credentials for a session and makes it current.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Session{}, gateway.NewValidationError("email", "email required")
	}
	if password == "" {
		return domain.Session{}, gateway.NewValidationError("password", "password required")
	}

	var resp dto.LoginResponse
	if err := s.api.Do(ctx, http.MethodPost, endpointLogin, dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return domain.Session{}, err
	}
	current := resp.Session()
	if !current.Authenticated() {
		return domain.Session{}, ErrNoCredential
	}
	if current.Email == "" {
		current.Email = email
	}
	if err := s.sessions.Save(ctx, current); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("session started", zap.Int64("user_id", current.UserID), zap.String("role", string(current.Role)))
	s.publish(ctx, events.New(events.EventSessionStarted, 0, events.ActorFromSession(current),
		events.SessionPayload{Name: current.Name, Email: current.Email}))
	return current, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, req domain.NewUserRequest) (dto.UserResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "":
		return dto.UserResponse{}, gateway.NewValidationError("name", "name required")
	case req.Email == "":
		return dto.UserResponse{}, gateway.NewValidationError("email", "email required")
	case req.Password == "":
		return dto.UserResponse{}, gateway.NewValidationError("password", "password required")
	}
	if req.Role == "" {
		req.Role = domain.RoleStudent
	}
	role, err := domain.ParseRole(string(req.Role))
	if err != nil {
		return dto.UserResponse{}, gateway.NewValidationError("role", err.Error())
	}
	req.Role = role

	payload, err := s.api.Request(ctx, http.MethodPost, endpointRegister, dto.NewRegisterRequest(req), nil)
	if err != nil {
		return dto.UserResponse{}, err
	}
	var created dto.UserResponse
	if payload.IsJSON() {
		if err := payload.Decode(&created); err != nil {
			return dto.UserResponse{}, err
		}
	}
	if created.Email == "" {
		created = dto.UserResponse{Name: req.Name, Email: req.Email, Role: req.Role, StaffID: req.StaffID, Specialization: req.Specialization}
	}
	s.logger.Info("account registered", zap.String("email", created.Email), zap.String("role", string(created.Role)))
	return created, nil
}

// RegisterAndLogin registers an account and immediately logs in with the same credentials.
func (s *AuthService) RegisterAndLogin(ctx context.Context, req domain.NewUserRequest) (domain.Session, error) {
	if _, err := s.Register(ctx, req); err != nil {
		return domain.Session{}, err
	}
	return s.Login(ctx, req.Email, req.Password)
}

// Logout clears the current session. It is safe to call when nobody is logged in.
func (s *AuthService) Logout(ctx context.Context) error {
	current, ok := s.sessions.Current()
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if ok {
		s.logger.Info("session ended", zap.Int64("user_id", current.UserID))
		s.publish(ctx, events.New(events.EventSessionEnded, 0, events.ActorFromSession(current),
			events.SessionPayload{Name: current.Name, Email: current.Email}))
	}
	return nil
}

// Current returns the logged-in identity.
func (s *AuthService) Current() (domain.Session, bool) {
	return s.sessions.Current()
}

// HandleError applies the credential rejection policy: an AuthError clears the
// session. It reports whether the session was cleared.
func (s *AuthService) HandleError(ctx context.Context, err error) bool {
	if !gateway.IsAuth(err) {
		return false
	}
	current, ok := s.sessions.Current()
	if clearErr := s.sessions.Clear(ctx); clearErr != nil {
		s.logger.Warn("clear rejected session", zap.Error(clearErr))
	}
	if ok {
		s.logger.Info("credential rejected, session cleared",
			zap.Int64("user_id", current.UserID),
			zap.Int("status", gateway.StatusCode(err)))
		s.publish(ctx, events.New(events.EventSessionEnded, 0, events.ActorFromSession(current),
			events.SessionPayload{Name: current.Name, Email: current.Email, Reason: "credential rejected"}))
	}
	return true
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}
