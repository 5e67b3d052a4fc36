package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("nil should stay nil")
	}

	wrapped := fmt.Errorf("assign: %w", NewConflict("ticket is closed", nil))
	got := ToDomainError(wrapped)
	if got.HTTPStatus != http.StatusConflict || got.Code != "CONFLICT" {
		t.Errorf("wrapped conflict = %+v", got)
	}

	cause := errors.New("connection reset")
	internal := ToDomainError(cause)
	if internal.HTTPStatus != http.StatusInternalServerError || !errors.Is(internal, cause) {
		t.Errorf("plain error = %+v", internal)
	}
	if internal.Message != "internal server error" {
		t.Errorf("internal message leaks cause: %q", internal.Message)
	}
}

func TestNewInvalidTransition(t *testing.T) {
	err := ToDomainError(NewInvalidTransition("OPEN", "IN_PROGRESS"))
	if err.HTTPStatus != http.StatusConflict || err.Message != "cannot move ticket from OPEN to IN_PROGRESS" {
		t.Errorf("got %+v", err)
	}
	if err.Details["from"] != "OPEN" {
		t.Errorf("details = %v", err.Details)
	}
}
