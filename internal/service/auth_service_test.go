package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/session"
)

func TestLoginStoresSessionFromTokenAlias(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /api/auth/login", respond(http.StatusOK, map[string]any{
		"id": 12, "name": "Ravi", "email": "ravi@hostel.edu", "role": "admin", "accessToken": "tok-123",
	}))

	store := session.NewStore(nil, nil)
	dispatcher := events.NewInMemoryDispatcher()
	var notices []string
	NewNotificationService(dispatcher, nil, config.NotificationConfig{}, func(m string) { notices = append(notices, m) }).RegisterHandlers()

	auth := NewAuthService(backend.client(store), store, dispatcher, nil)
	got, err := auth.Login(context.Background(), " ravi@hostel.edu ", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.Credential != "tok-123" || got.Role != domain.RoleAdmin || got.UserID != 12 {
		t.Errorf("session = %+v", got)
	}
	if current, ok := store.Current(); !ok || current != got {
		t.Errorf("store current = %+v, %v", current, ok)
	}
	body := backend.lastBody("POST /api/auth/login")
	if body["email"] != "ravi@hostel.edu" || body["password"] != "secret" {
		t.Errorf("login body = %v", body)
	}
	if len(notices) != 1 || notices[0] != "Welcome, Ravi" {
		t.Errorf("notices = %v", notices)
	}
}

func TestLoginValidationSendsNothing(t *testing.T) {
	backend := newFakeBackend(t)
	store := session.NewStore(nil, nil)
	auth := NewAuthService(backend.client(store), store, nil, nil)

	if _, err := auth.Login(context.Background(), "", "pw"); !gateway.IsValidation(err) {
		t.Errorf("empty email: got %v", err)
	}
	if _, err := auth.Login(context.Background(), "a@b.c", ""); !gateway.IsValidation(err) {
		t.Errorf("empty password: got %v", err)
	}
	if backend.totalCalls() != 0 {
		t.Errorf("validation failures sent %d requests", backend.totalCalls())
	}
}

func TestLoginWithoutCredential(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /api/auth/login", respond(http.StatusOK, map[string]any{"id": 1, "name": "X", "role": "STUDENT"}))
	store := session.NewStore(nil, nil)
	auth := NewAuthService(backend.client(store), store, nil, nil)

	if _, err := auth.Login(context.Background(), "x@hostel.edu", "pw"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("got %v, want ErrNoCredential", err)
	}
	if _, ok := store.Current(); ok {
		t.Error("no session should be stored")
	}
}

func TestLoginRejected(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /api/auth/login", respond(http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"}))
	store := session.NewStore(nil, nil)
	auth := NewAuthService(backend.client(store), store, nil, nil)

	_, err := auth.Login(context.Background(), "x@hostel.edu", "wrong")
	if !gateway.IsAuth(err) || err.Error() != "Invalid credentials" {
		t.Fatalf("got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /api/auth/register", respond(http.StatusCreated, map[string]any{
		"id": 30, "name": "Meera", "email": "meera@hostel.edu", "role": "STUDENT",
	}))
	backend.handle("POST /api/auth/login", respond(http.StatusOK, map[string]any{
		"id": 30, "name": "Meera", "email": "meera@hostel.edu", "role": "STUDENT", "token": "tok-30",
	}))
	store := session.NewStore(nil, nil)
	auth := NewAuthService(backend.client(store), store, nil, nil)

	got, err := auth.RegisterAndLogin(context.Background(), domain.NewUserRequest{
		Name: "Meera", Email: "meera@hostel.edu", Password: "pw",
	})
	if err != nil {
		t.Fatalf("RegisterAndLogin: %v", err)
	}
	if got.UserID != 30 || got.Credential != "tok-30" {
		t.Errorf("session = %+v", got)
	}
	if role := backend.lastBody("POST /api/auth/register")["role"]; role != "STUDENT" {
		t.Errorf("register role = %v, want default STUDENT", role)
	}
}

func TestRegisterValidation(t *testing.T) {
	backend := newFakeBackend(t)
	auth := NewAuthService(backend.client(nil), session.NewStore(nil, nil), nil, nil)
	tests := []domain.NewUserRequest{
		{Email: "a@b.c", Password: "pw"},
		{Name: "A", Password: "pw"},
		{Name: "A", Email: "a@b.c"},
		{Name: "A", Email: "a@b.c", Password: "pw", Role: "JANITOR"},
	}
	for _, req := range tests {
		if _, err := auth.Register(context.Background(), req); !gateway.IsValidation(err) {
			t.Errorf("Register(%+v) = %v, want ValidationError", req, err)
		}
	}
	if backend.totalCalls() != 0 {
		t.Errorf("sent %d requests", backend.totalCalls())
	}
}

func TestHandleErrorClearsOnlyOnAuthError(t *testing.T) {
	store := loggedIn(t, domain.RoleAdmin)
	auth := NewAuthService(nil, store, nil, nil)
	ctx := context.Background()

	if auth.HandleError(ctx, &gateway.APIError{StatusCode: 500, Message: "boom"}) {
		t.Error("APIError should not clear the session")
	}
	if _, ok := store.Current(); !ok {
		t.Fatal("session cleared by a non-auth error")
	}

	authErr := &gateway.AuthError{APIError: gateway.APIError{StatusCode: 401, Message: "expired"}}
	if !auth.HandleError(ctx, authErr) {
		t.Error("AuthError should clear the session")
	}
	if _, ok := store.Current(); ok {
		t.Error("session still present after AuthError")
	}
}

func TestLogout(t *testing.T) {
	store := loggedIn(t, domain.RoleStudent)
	dispatcher := events.NewInMemoryDispatcher()
	var ended []events.Event
	dispatcher.Subscribe(events.EventSessionEnded, func(_ context.Context, e events.Event) error {
		ended = append(ended, e)
		return nil
	})
	auth := NewAuthService(nil, store, dispatcher, nil)

	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := auth.Current(); ok {
		t.Error("still logged in")
	}
	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if len(ended) != 1 || ended[0].Actor.UserID != 7 {
		t.Errorf("session_ended events = %+v", ended)
	}
}
