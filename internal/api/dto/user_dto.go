package dto

import (
	"strings"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the identity returned by a successful login.
type LoginResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Token       string      `json:"token,omitempty"`
	AccessToken string      `json:"accessToken,omitempty"`
	JWT         string      `json:"jwt,omitempty"`
}

// Credential returns the bearer token under whichever name the backend used.
func (r LoginResponse) Credential() string {
	for _, candidate := range []string{r.Token, r.AccessToken, r.JWT} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// Session converts the login response into a client session.
func (r LoginResponse) Session() domain.Session {
	return domain.Session{
		UserID:     r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       domain.Role(strings.ToUpper(string(r.Role))),
		Credential: r.Credential(),
	}
}

// RegisterRequest payload.
type RegisterRequest struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	Role           domain.Role `json:"role"`
	StaffID        string      `json:"staffId,omitempty"`
	Specialization string      `json:"specialization,omitempty"`
	AdminKey       string      `json:"adminKey,omitempty"`
}

// NewRegisterRequest converts domain input to the wire payload.
func NewRegisterRequest(req domain.NewUserRequest) RegisterRequest {
	return RegisterRequest{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		StaffID:        req.StaffID,
		Specialization: req.Specialization,
		AdminKey:       req.AdminKey,
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	StaffID        string      `json:"staffId,omitempty"`
	Specialization string      `json:"specialization,omitempty"`
}

// NewUserResponse converts a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		StaffID:        user.StaffID,
		Specialization: user.Specialization,
	}
}
