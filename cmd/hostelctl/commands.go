package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/gateway"
	"github.com/campusfix/hostel-desk/internal/query"
	"github.com/campusfix/hostel-desk/internal/service"
)

func (a *app) root() *command {
	return &command{
		Name:    "hostelctl",
		Summary: "Report and track hostel maintenance tickets.",
		Subcommands: []*command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.registerCommand(),
			a.ticketsCommand(),
			a.statsCommand(),
			a.dashboardCommand(),
		},
	}
}

func (a *app) loginCommand() *command {
	var email, password string
	return &command{
		Name:    "login",
		Summary: "Sign in and remember the session",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "account email")
			fs.StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			if password == "" {
				var err error
				if password, err = readLine(os.Stdin); err != nil {
					return err
				}
			}
			current, err := a.auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", current.Name, current.Role)
			return nil
		},
	}
}

func (a *app) logoutCommand() *command {
	return &command{
		Name:    "logout",
		Summary: "Forget the current session",
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			return a.auth.Logout(ctx)
		},
	}
}

func (a *app) whoamiCommand() *command {
	return &command{
		Name:    "whoami",
		Summary: "Show the signed-in account",
		Run: func(context.Context, *pflag.FlagSet, []string) error {
			current, ok := a.auth.Current()
			if !ok {
				return service.ErrNoCredential
			}
			writeSession(a.out, current)
			return nil
		},
	}
}

func (a *app) registerCommand() *command {
	var (
		req   domain.NewUserRequest
		role  string
		login bool
	)
	return &command{
		Name:    "register",
		Summary: "Create an account",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&req.Name, "name", "", "full name")
			fs.StringVar(&req.Email, "email", "", "account email")
			fs.StringVarP(&req.Password, "password", "p", "", "password (read from stdin when omitted)")
			fs.StringVar(&role, "role", string(domain.RoleStudent), "STUDENT, STAFF or ADMIN")
			fs.StringVar(&req.StaffID, "staff-id", "", "staff identifier")
			fs.StringVar(&req.Specialization, "specialization", "", "staff specialization, e.g. Plumbing")
			fs.StringVar(&req.AdminKey, "admin-key", "", "key required to register an admin")
			fs.BoolVar(&login, "login", true, "sign in after registering")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			if req.Password == "" {
				var err error
				if req.Password, err = readLine(os.Stdin); err != nil {
					return err
				}
			}
			req.Role = domain.Role(strings.ToUpper(strings.TrimSpace(role)))
			if login {
				current, err := a.auth.RegisterAndLogin(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Registered and signed in as %s (%s)\n", current.Name, current.Role)
				return nil
			}
			user, err := a.auth.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s with id %d\n", user.Email, user.ID)
			return nil
		},
	}
}

func (a *app) ticketsCommand() *command {
	return &command{
		Name:    "tickets",
		Summary: "List, create and triage tickets",
		Subcommands: []*command{
			a.ticketsListCommand(),
			a.ticketsMineCommand(),
			a.ticketsCreateCommand(),
			a.ticketsAssignCommand(),
			a.ticketsStatusCommand(),
		},
	}
}

func (a *app) ticketsListCommand() *command {
	var (
		status, search string
		page, size     int
	)
	return &command{
		Name:    "list",
		Summary: "Page through all tickets (staff and admins)",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.StringVar(&status, "status", query.StatusAll, "filter by status")
			fs.IntVar(&page, "page", 1, "page number, starting at 1")
			fs.IntVar(&size, "size", 0, "page size (defaults to API_PAGE_SIZE)")
			fs.StringVar(&search, "search", "", "narrow the fetched page by title, id, category, reporter or location")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			params, err := listParams(status, page, size)
			if err != nil {
				return err
			}
			result, err := a.queries.ListTickets(ctx, params)
			if err != nil {
				return err
			}
			if page > result.TotalPages && result.TotalPages > 0 {
				if result, err = a.queries.GoToPage(ctx, page-1); err != nil {
					return err
				}
			}
			if strings.TrimSpace(search) != "" {
				result = a.queries.Search(search)
			}
			writeTickets(a.out, result.Items)
			writePageFooter(a.out, result)
			return nil
		},
	}
}

func (a *app) ticketsMineCommand() *command {
	var status string
	return &command{
		Name:    "mine",
		Summary: "List the tickets you reported",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("mine", pflag.ContinueOnError)
			fs.StringVar(&status, "status", query.StatusAll, "filter by status")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			tickets, err := a.queries.ListMine(ctx, status)
			if err != nil {
				return err
			}
			writeTickets(a.out, tickets)
			return nil
		},
	}
}

func (a *app) ticketsCreateCommand() *command {
	var (
		input                  service.TicketCreateInput
		location, block, room string
	)
	return &command{
		Name:    "create",
		Summary: "Report a new issue",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&input.Title, "title", "", "short summary")
			fs.StringVar(&input.Description, "description", "", "what is wrong")
			fs.StringVar(&input.Category, "category", "", "e.g. Plumbing, Electrical")
			fs.StringVar(&location, "location", "", "free-text location")
			fs.StringVar(&block, "block", "", "hostel block (takes precedence over --location)")
			fs.StringVar(&room, "room", "", "room number within the block")
			fs.StringVar(&input.Priority, "priority", string(domain.TicketPriorityMedium), "LOW, MEDIUM, HIGH or CRITICAL")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			input.Location = domain.LocationFromParts(location, block, room)
			ticket, err := a.tickets.CreateTicket(ctx, input)
			if err != nil {
				return err
			}
			writeTickets(a.out, []domain.Ticket{*ticket})
			return nil
		},
	}
}

func (a *app) ticketsAssignCommand() *command {
	return &command{
		Name:    "assign",
		Summary: "Assign a ticket to a staff member",
		Usage:   "hostelctl tickets assign TICKET_ID STAFF_USER_ID",
		Run: func(ctx context.Context, _ *pflag.FlagSet, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hostelctl tickets assign TICKET_ID STAFF_USER_ID")
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			if err := a.primeTickets(ctx); err != nil {
				return err
			}
			ticket, err := a.tickets.AssignTicket(ctx, id, args[1])
			if err != nil {
				return err
			}
			writeTickets(a.out, []domain.Ticket{*ticket})
			return nil
		},
	}
}

func (a *app) ticketsStatusCommand() *command {
	return &command{
		Name:    "status",
		Summary: "Move a ticket to a new status",
		Usage:   "hostelctl tickets status TICKET_ID STATUS",
		Run: func(ctx context.Context, _ *pflag.FlagSet, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hostelctl tickets status TICKET_ID STATUS")
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			if err := a.primeTickets(ctx); err != nil {
				return err
			}
			ticket, err := a.tickets.UpdateStatus(ctx, id, args[1])
			if err != nil {
				return err
			}
			writeTickets(a.out, []domain.Ticket{*ticket})
			return nil
		},
	}
}

func (a *app) statsCommand() *command {
	return &command{
		Name:    "stats",
		Summary: "Show ticket counts per status",
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			stats, err := a.stats.GetStats(ctx)
			if err != nil {
				return err
			}
			writeStats(a.out, stats)
			return nil
		},
	}
}

func (a *app) dashboardCommand() *command {
	var status string
	var page int
	return &command{
		Name:    "dashboard",
		Summary: "Summary counts plus the first page of tickets",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
			fs.StringVar(&status, "status", query.StatusAll, "filter by status")
			fs.IntVar(&page, "page", 1, "page number, starting at 1")
			return fs
		},
		Run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			params, err := listParams(status, page, 0)
			if err != nil {
				return err
			}
			view, err := a.dashboard.Load(ctx, params)
			if err != nil {
				return err
			}
			if view.StatsErr != nil {
				fmt.Fprintln(a.notice, faintStyle.Render("summary unavailable: "+view.StatsErr.Error()))
			} else {
				writeStats(a.out, view.Stats)
				fmt.Fprintln(a.out)
			}
			writeTickets(a.out, view.Page.Items)
			writePageFooter(a.out, view.Page)
			return nil
		},
	}
}

// primeTickets loads the known tickets so lifecycle checks can run locally.
// Only credential failures abort; anything else leaves the decision to the backend.
func (a *app) primeTickets(ctx context.Context) error {
	err := a.tickets.Reload(ctx)
	if err != nil && gateway.IsAuth(err) {
		return err
	}
	return nil
}

func listParams(status string, page, size int) (query.ListParams, error) {
	params := query.ListParams{Page: max(page-1, 0), PageSize: size}
	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, query.StatusAll) {
		parsed, err := domain.ParseStatus(s)
		if err != nil {
			return query.ListParams{}, gateway.NewValidationError("status", err.Error())
		}
		params.Status = parsed
	}
	return params, nil
}

func parseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, gateway.NewValidationError("ticket id", "must be a positive number")
	}
	return id, nil
}

func readLine(r io.Reader) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
