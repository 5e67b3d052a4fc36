package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/campusfix/hostel-desk/internal/api/http"
	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/repository"
)

func TestCommandDispatch(t *testing.T) {
	var got []string
	var verbose bool
	root := &command{
		Name: "tool",
		Subcommands: []*command{{
			Name: "echo",
			Flags: func() *pflag.FlagSet {
				fs := pflag.NewFlagSet("echo", pflag.ContinueOnError)
				fs.BoolVarP(&verbose, "verbose", "v", false, "")
				return fs
			},
			Run: func(_ context.Context, _ *pflag.FlagSet, args []string) error {
				got = args
				return nil
			},
		}},
	}
	var help bytes.Buffer
	ctx := context.Background()

	if err := root.execute(ctx, []string{"echo", "-v", "a", "b"}, &help); err != nil {
		t.Fatal(err)
	}
	if !verbose || len(got) != 2 || got[0] != "a" {
		t.Errorf("verbose=%v args=%v", verbose, got)
	}
	if err := root.execute(ctx, []string{"nope"}, &help); err == nil || !strings.Contains(err.Error(), `unknown command "nope"`) {
		t.Errorf("unknown = %v", err)
	}
	if err := root.execute(ctx, []string{"echo", "--bogus"}, &help); err == nil {
		t.Error("unknown flag accepted")
	}
	if err := root.execute(ctx, nil, &help); err == nil {
		t.Error("missing subcommand accepted")
	}
	help.Reset()
	if err := root.execute(ctx, []string{"--help"}, &help); err != nil || !strings.Contains(help.String(), "echo") {
		t.Errorf("help = %q, %v", help.String(), err)
	}
}

func TestListParams(t *testing.T) {
	params, err := listParams("in_progress", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if params.Status != domain.TicketStatusInProgress || params.Page != 2 || params.PageSize != 0 {
		t.Errorf("params = %+v", params)
	}
	if all, _ := listParams("ALL", 0, 5); all.Status != "" || all.Page != 0 {
		t.Errorf("ALL = %+v", all)
	}
	if _, err := listParams("DONE", 1, 0); !gateway.IsValidation(err) {
		t.Errorf("bad status = %v", err)
	}
	if _, err := parseTicketID("x"); !gateway.IsValidation(err) {
		t.Errorf("parseTicketID = %v", err)
	}
}

func TestWriteTickets(t *testing.T) {
	var buf bytes.Buffer
	writeTickets(&buf, nil)
	if !strings.Contains(buf.String(), "no tickets") {
		t.Errorf("empty = %q", buf.String())
	}

	buf.Reset()
	writeTickets(&buf, []domain.Ticket{{
		ID:        4,
		Title:     "Window latch broken in the second floor corridor near stairs",
		Category:  "Carpentry",
		Location:  domain.RoomLocation("C", "12"),
		Priority:  domain.TicketPriorityHigh,
		Status:    domain.TicketStatusResolved,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	for _, want := range []string{"Window latch broken", "…", "C / 12", "HIGH", "RESOLVED"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	store := repository.NewMemoryStore()
	backendCfg := config.Config{Auth: config.AuthConfig{JWTSecret: "cli-secret", BcryptCost: 4}}
	server := httptest.NewServer(adaptor.FiberApp(httptransport.NewApp(httptransport.AppDependencies{
		Config:  backendCfg,
		Users:   store.Users(),
		Tickets: store.Tickets(),
	})))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		API:       config.APIConfig{BaseURL: server.URL, PageSize: 10},
		Session:   config.SessionConfig{Backend: config.SessionBackendMemory},
		Lifecycle: config.LifecycleConfig{AssignedAsInProgress: true},
	}
	var out bytes.Buffer
	a, err := newApp(context.Background(), cfg, zap.NewNop(), &out, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.close)
	return a, &out
}

func (a *app) runCLI(args ...string) error {
	ctx := context.Background()
	return a.guard(ctx, a.root().execute(ctx, args, &bytes.Buffer{}))
}

func TestCLIStudentFlow(t *testing.T) {
	a, out := newTestApp(t)

	if err := a.runCLI("register", "--name", "Asha", "--email", "asha@hostel.edu", "-p", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.runCLI("tickets", "create", "--title", "No hot water", "--description", "Geyser off since morning",
		"--category", "Plumbing", "--block", "A", "--room", "101", "--priority", "high"); err != nil {
		t.Fatalf("create: %v", err)
	}
	out.Reset()
	if err := a.runCLI("tickets", "mine", "--status", "open"); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if !strings.Contains(out.String(), "No hot water") || !strings.Contains(out.String(), "A / 101") {
		t.Errorf("mine output:\n%s", out.String())
	}

	out.Reset()
	if err := a.runCLI("whoami"); err != nil || !strings.Contains(out.String(), "STUDENT") {
		t.Errorf("whoami = %q, %v", out.String(), err)
	}

	err := a.runCLI("stats")
	if !errors.Is(err, errLoginAgain) || !gateway.IsAuth(err) {
		t.Fatalf("student stats = %v", err)
	}
	if _, ok := a.sessions.Current(); ok {
		t.Error("session kept after AuthError")
	}
}

func TestCLIStaffTriage(t *testing.T) {
	a, out := newTestApp(t)

	if err := a.runCLI("register", "--name", "Kumar", "--email", "kumar@hostel.edu", "-p", "secret1", "--role", "staff"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.runCLI("tickets", "create", "--title", "Fuse blown", "--description", "Room dark",
		"--category", "Electrical", "--location", "Reading room"); err != nil {
		t.Fatalf("create: %v", err)
	}
	current, _ := a.sessions.Current()
	if err := a.runCLI("tickets", "assign", "1", "1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := a.runCLI("tickets", "status", "1", "in_progress"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if current.UserID != 1 {
		t.Fatalf("unexpected staff id %d", current.UserID)
	}

	out.Reset()
	if err := a.runCLI("dashboard"); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	for _, want := range []string{"Ticket summary", "Fuse blown", "IN_PROGRESS", "page 1 of 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dashboard missing %q:\n%s", want, out.String())
		}
	}

	if err := a.runCLI("tickets", "status", "1", "OPEN"); err == nil {
		t.Error("IN_PROGRESS -> OPEN accepted")
	}

	if err := a.runCLI("logout"); err != nil {
		t.Fatal(err)
	}
	if err := a.runCLI("whoami"); err == nil {
		t.Error("whoami after logout succeeded")
	}
}
