package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a local precondition failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// APIError is any non-2xx response. Message carries the backend's message
// field, the raw body text, or a generic fallback, in that order.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	return e.Message
}

// AuthError is a 401 or 403: the credential is invalid, expired, or lacks the role.
// It embeds APIError so callers checking for API failures still see it.
type AuthError struct {
	APIError
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *AuthError) Unwrap() error {
	return &e.APIError
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsAPI reports whether err came from a non-2xx response (AuthError included).
func IsAPI(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var target *APIError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

func classify(status int, message, method, path string) error {
	apiErr := APIError{StatusCode: status, Message: message, Method: method, Path: path}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{APIError: apiErr}
	}
	return &apiErr
}
