package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role separates students from the people who work their tickets.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes and validates a role value.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleStudent, RoleStaff, RoleAdmin:
		return role, nil
	case "":
		return "", fmt.Errorf("role required")
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// CanTriage reports whether the role may assign tickets and change status.
func (r Role) CanTriage() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is an account known to the backend.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	StaffID        string
	Specialization string
	CreatedAt      time.Time
}

// Session is the single authenticated identity of a client.
type Session struct {
	UserID     int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Credential string `json:"token"`
}

// Authenticated reports whether the session carries a usable credential.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Credential) != ""
}

// NewUserRequest carries account creation input.
type NewUserRequest struct {
	Name           string
	Email          string
	Password       string
	Role           Role
	StaffID        string
	Specialization string
	AdminKey       string
}
