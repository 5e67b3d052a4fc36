package desk

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/campusfix/hostel-desk/internal/auth"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/repository"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

type fixture struct {
	store   *repository.MemoryStore
	auth    *AuthService
	tickets *TicketService
	events  []events.Event
	student *domain.User
	staff   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: repository.NewMemoryStore()}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketAssigned, events.EventTicketStatusChanged} {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}
	f.auth = NewAuthService(AuthDependencies{
		Users:      f.store.Users(),
		Tokens:     auth.NewTokenManager("test-secret", 5),
		BcryptCost: 4,
		AdminKey:   "letmein",
	})
	f.tickets = NewTicketService(TicketDependencies{
		Tickets:    f.store.Tickets(),
		Users:      f.store.Users(),
		Dispatcher: dispatcher,
	})

	var err error
	f.student, err = f.auth.Register(context.Background(), domain.NewUserRequest{Name: "Asha", Email: "asha@hostel.edu", Password: "secret1"})
	if err != nil {
		t.Fatalf("register student: %v", err)
	}
	f.staff, err = f.auth.Register(context.Background(), domain.NewUserRequest{Name: "Kumar", Email: "kumar@hostel.edu", Password: "secret1", Role: domain.RoleStaff})
	if err != nil {
		t.Fatalf("register staff: %v", err)
	}
	return f
}

func (f *fixture) create(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), f.student, TicketCreateInput{
		Title:       "Leaking tap",
		Description: "Bathroom tap drips all night",
		Category:    "Plumbing",
		Location:    domain.RoomLocation("B", "214"),
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	return ticket
}

func statusOf(err error) int {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus
	}
	return 0
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.student.Role != domain.RoleStudent || f.student.PasswordHash == "secret1" {
		t.Errorf("student = %+v", f.student)
	}

	user, token, exp, err := f.auth.Login(ctx, "ASHA@hostel.edu", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != f.student.ID || token == "" || exp.IsZero() {
		t.Errorf("login = %+v %q %v", user, token, exp)
	}
	claims, err := f.auth.TokenManager().ParseToken(token)
	if err != nil || claims.UserID != f.student.ID {
		t.Errorf("claims = %+v, %v", claims, err)
	}

	if _, _, _, err := f.auth.Login(ctx, "asha@hostel.edu", "wrong"); statusOf(err) != http.StatusUnauthorized {
		t.Errorf("wrong password = %v", err)
	}
	if _, _, _, err := f.auth.Login(ctx, "nobody@hostel.edu", "secret1"); statusOf(err) != http.StatusUnauthorized {
		t.Errorf("unknown email = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.NewUserRequest
		want int
	}{
		{"missing name", domain.NewUserRequest{Email: "x@hostel.edu", Password: "secret1"}, http.StatusBadRequest},
		{"bad email", domain.NewUserRequest{Name: "X", Email: "not-an-email", Password: "secret1"}, http.StatusBadRequest},
		{"short password", domain.NewUserRequest{Name: "X", Email: "x@hostel.edu", Password: "abc"}, http.StatusBadRequest},
		{"unknown role", domain.NewUserRequest{Name: "X", Email: "x@hostel.edu", Password: "secret1", Role: "WARDEN"}, http.StatusBadRequest},
		{"duplicate", domain.NewUserRequest{Name: "X", Email: "asha@hostel.edu", Password: "secret1"}, http.StatusConflict},
		{"admin without key", domain.NewUserRequest{Name: "X", Email: "x@hostel.edu", Password: "secret1", Role: domain.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.auth.Register(ctx, tc.req); statusOf(err) != tc.want {
				t.Errorf("status = %d (%v), want %d", statusOf(err), err, tc.want)
			}
		})
	}

	admin, err := f.auth.Register(ctx, domain.NewUserRequest{Name: "Root", Email: "root@hostel.edu", Password: "secret1", Role: domain.RoleAdmin, AdminKey: "letmein"})
	if err != nil || admin.Role != domain.RoleAdmin {
		t.Errorf("admin with key = %+v, %v", admin, err)
	}
}

func TestCreateTicketDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ticket := f.create(t)

	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("ticket = %+v", ticket)
	}
	if ticket.CreatedByUserID != f.student.ID || ticket.CreatedByName != "Asha" {
		t.Errorf("creator = %d %q", ticket.CreatedByUserID, ticket.CreatedByName)
	}
	if len(f.events) != 1 || f.events[0].Type != events.EventTicketCreated {
		t.Errorf("events = %+v", f.events)
	}

	_, err := f.tickets.CreateTicket(context.Background(), f.student, TicketCreateInput{Title: "t", Description: "d", Category: "c"})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("missing location = %v", err)
	}
	_, err = f.tickets.CreateTicket(context.Background(), f.student, TicketCreateInput{
		Title: "t", Description: "d", Category: "c", Location: domain.FreeformLocation("Mess"), Priority: "URGENT",
	})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("bad priority = %v", err)
	}
}

func TestLifecycleEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	if _, err := f.tickets.UpdateStatus(ctx, f.staff, ticket.ID, "IN_PROGRESS"); statusOf(err) != http.StatusConflict {
		t.Fatalf("OPEN -> IN_PROGRESS = %v, want 409", err)
	}
	if _, err := f.tickets.UpdateStatus(ctx, f.staff, ticket.ID, "ASSIGNED"); statusOf(err) != http.StatusBadRequest {
		t.Errorf("status ASSIGNED = %v, want 400", err)
	}

	assigned, err := f.tickets.Assign(ctx, f.staff, ticket.ID, f.staff.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != domain.TicketStatusAssigned || assigned.AssignedToName != "Kumar" {
		t.Errorf("assigned = %+v", assigned)
	}

	for _, next := range []string{"in_progress", "RESOLVED", "CLOSED"} {
		if _, err := f.tickets.UpdateStatus(ctx, f.staff, ticket.ID, next); err != nil {
			t.Fatalf("-> %s: %v", next, err)
		}
	}

	if _, err := f.tickets.Assign(ctx, f.staff, ticket.ID, f.staff.ID); statusOf(err) != http.StatusConflict {
		t.Errorf("assign CLOSED = %v, want 409", err)
	}
	if _, err := f.tickets.UpdateStatus(ctx, f.staff, ticket.ID, "RESOLVED"); statusOf(err) != http.StatusConflict {
		t.Errorf("CLOSED -> RESOLVED = %v, want 409", err)
	}

	stats, err := f.tickets.Stats(ctx)
	if err != nil || stats.ClosedTickets != 1 || stats.TotalTickets != 1 {
		t.Errorf("stats = %+v, %v", stats, err)
	}
	last := f.events[len(f.events)-1]
	payload, ok := last.Payload.(events.TicketStatusChangedPayload)
	if !ok || payload.OldStatus != domain.TicketStatusResolved || payload.NewStatus != domain.TicketStatusClosed {
		t.Errorf("last event = %+v", last)
	}
}

func TestAssignRequiresStaffAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	if _, err := f.tickets.Assign(ctx, f.staff, ticket.ID, f.student.ID); statusOf(err) != http.StatusBadRequest {
		t.Errorf("student assignee = %v", err)
	}
	if _, err := f.tickets.Assign(ctx, f.staff, ticket.ID, 999); statusOf(err) != http.StatusBadRequest {
		t.Errorf("unknown assignee = %v", err)
	}
	if _, err := f.tickets.Assign(ctx, f.staff, 999, f.staff.ID); statusOf(err) != http.StatusNotFound {
		t.Errorf("unknown ticket = %v", err)
	}

	if _, err := f.tickets.Assign(ctx, f.staff, ticket.ID, f.staff.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.Assign(ctx, f.staff, ticket.ID, f.staff.ID); err != nil {
		t.Errorf("reassign = %v", err)
	}
	payload := f.events[len(f.events)-1].Payload.(events.TicketAssignedPayload)
	if !payload.Reassigned {
		t.Error("second assignment should be flagged as reassignment")
	}
}

func TestListingScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		f.create(t)
	}
	other, err := f.auth.Register(ctx, domain.NewUserRequest{Name: "Ravi", Email: "ravi@hostel.edu", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.CreateTicket(ctx, other, TicketCreateInput{Title: "t", Description: "d", Category: "c", Location: domain.FreeformLocation("Gym")}); err != nil {
		t.Fatal(err)
	}

	page, err := f.tickets.ListPage(ctx, PageRequest{Page: 1, Size: 5})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 13 || page.TotalPages != 3 || len(page.Items) != 5 {
		t.Errorf("page = total %d pages %d items %d", page.Total, page.TotalPages, len(page.Items))
	}
	if empty, _ := f.tickets.ListPage(ctx, PageRequest{Status: "CLOSED"}); empty.TotalPages != 0 || len(empty.Items) != 0 {
		t.Errorf("closed page = %+v", empty)
	}
	if _, err := f.tickets.ListPage(ctx, PageRequest{Status: "DONE"}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("bad status filter = %v", err)
	}
	if clamped, _ := f.tickets.ListPage(ctx, PageRequest{Size: 500}); clamped.Size != maxPageSize {
		t.Errorf("size = %d", clamped.Size)
	}

	mine, err := f.tickets.ListAll(ctx, other)
	if err != nil || len(mine) != 1 {
		t.Errorf("student ListAll = %d, %v", len(mine), err)
	}
	all, err := f.tickets.ListAll(ctx, f.staff)
	if err != nil || len(all) != 13 {
		t.Errorf("staff ListAll = %d, %v", len(all), err)
	}
	if _, err := f.tickets.ListByUser(ctx, other, f.student.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("foreign ListByUser = %v", err)
	}
	if byUser, err := f.tickets.ListByUser(ctx, f.staff, f.student.ID); err != nil || len(byUser) != 12 {
		t.Errorf("staff ListByUser = %d, %v", len(byUser), err)
	}
}
