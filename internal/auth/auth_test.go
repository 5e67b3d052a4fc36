package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/repository"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

func TestTokenRoundTripAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return start }

	token, exp, err := tm.GenerateToken(&domain.User{ID: 42, Role: domain.RoleStaff})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !exp.Equal(start.Add(time.Minute)) {
		t.Errorf("exp = %v", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != domain.RoleStaff || claims.Subject != "42" {
		t.Errorf("claims = %+v", claims)
	}

	tm.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("expired token accepted")
	}

	other := NewTokenManager("other-secret", 1)
	other.now = func() time.Time { return start }
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

func TestPasswordMatches(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := PasswordMatches(hash, "secret1"); !ok || err != nil {
		t.Errorf("correct password = %v, %v", ok, err)
	}
	if ok, err := PasswordMatches(hash, "nope"); ok || err != nil {
		t.Errorf("wrong password = %v, %v", ok, err)
	}
	if _, err := PasswordMatches("not-a-hash", "secret1"); err == nil {
		t.Error("malformed hash should error")
	}
}

func newProtectedApp(t *testing.T, roles ...domain.Role) (*fiber.App, *TokenManager, *domain.User, *domain.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	student := &domain.User{Name: "Asha", Email: "asha@hostel.edu", Role: domain.RoleStudent}
	staff := &domain.User{Name: "Kumar", Email: "kumar@hostel.edu", Role: domain.RoleStaff}
	for _, u := range []*domain.User{student, staff} {
		if err := store.Users().Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, store.Users())
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				return c.SendStatus(domainErr.HTTPStatus)
			}
			return c.SendStatus(http.StatusInternalServerError)
		},
	})
	app.Get("/whoami", mw.Handle, RequireRoles(roles...), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(string(principal.Role()))
	})
	return app, tm, student, staff
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, student, _ := newProtectedApp(t)
	token, _, _ := tm.GenerateToken(student)
	ghost, _, _ := tm.GenerateToken(&domain.User{ID: 99, Role: domain.RoleAdmin})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestRequireTriage(t *testing.T) {
	app, tm, student, staff := newProtectedApp(t, domain.RoleStaff, domain.RoleAdmin)

	for _, tc := range []struct {
		user *domain.User
		want int
	}{
		{student, http.StatusForbidden},
		{staff, http.StatusOK},
	} {
		token, _, _ := tm.GenerateToken(tc.user)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.user.Role, resp.StatusCode, tc.want)
		}
	}
}
