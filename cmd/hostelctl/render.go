package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/campusfix/hostel-desk/internal/domain"
)

var (
	statusColors = map[domain.TicketStatus]lipgloss.Color{
		domain.TicketStatusOpen:       lipgloss.Color("39"),
		domain.TicketStatusAssigned:   lipgloss.Color("214"),
		domain.TicketStatusInProgress: lipgloss.Color("220"),
		domain.TicketStatusResolved:   lipgloss.Color("42"),
		domain.TicketStatusClosed:     lipgloss.Color("245"),
	}
	priorityColors = map[domain.TicketPriority]lipgloss.Color{
		domain.TicketPriorityLow:      lipgloss.Color("245"),
		domain.TicketPriorityMedium:   lipgloss.Color("39"),
		domain.TicketPriorityHigh:     lipgloss.Color("208"),
		domain.TicketPriorityCritical: lipgloss.Color("196"),
	}
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func statusBadge(status domain.TicketStatus) string {
	return lipgloss.NewStyle().Foreground(statusColors[status]).Bold(true).Render(string(status))
}

func priorityBadge(priority domain.TicketPriority) string {
	return lipgloss.NewStyle().
		Foreground(priorityColors[priority]).
		Bold(priority == domain.TicketPriorityCritical).
		Render(string(priority))
}

// writeTickets prints one row per ticket. Badges go last so ANSI sequences do
// not disturb tabwriter's column widths.
func writeTickets(w io.Writer, tickets []domain.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(w, faintStyle.Render("no tickets"))
		return
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tLOCATION\tREPORTED BY\tASSIGNEE\tCREATED\tPRIORITY / STATUS")
	for _, t := range tickets {
		assignee := t.AssignedToName
		if assignee == "" && t.AssignedToUserID != nil {
			assignee = "#" + strconv.FormatInt(*t.AssignedToUserID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s %s\n",
			t.ID,
			truncate(t.Title, 40),
			t.Category,
			t.Location.String(),
			dash(t.CreatedByName),
			dash(assignee),
			formatDate(t),
			priorityBadge(t.Priority),
			statusBadge(t.Status))
	}
	tw.Flush()
}

func writePageFooter(w io.Writer, page domain.TicketPage) {
	total := page.TotalPages
	if total < 1 {
		total = 1
	}
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("page %d of %d", page.PageIndex+1, total)))
}

func writeStats(w io.Writer, stats domain.Stats) {
	fmt.Fprintln(w, headerStyle.Render("Ticket summary"))
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  total\t%d\n", stats.TotalTickets)
	rows := []struct {
		status domain.TicketStatus
		count  int
	}{
		{domain.TicketStatusOpen, stats.OpenTickets},
		{domain.TicketStatusAssigned, stats.AssignedTickets},
		{domain.TicketStatusInProgress, stats.InProgressTickets},
		{domain.TicketStatusResolved, stats.ResolvedTickets},
		{domain.TicketStatusClosed, stats.ClosedTickets},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\t%d\n", string(row.status), row.count)
	}
	tw.Flush()
}

func writeSession(w io.Writer, session domain.Session) {
	fmt.Fprintf(w, "%s <%s>\n", session.Name, session.Email)
	fmt.Fprintf(w, "  id:   %d\n", session.UserID)
	fmt.Fprintf(w, "  role: %s\n", session.Role)
}

func formatDate(t domain.Ticket) string {
	if t.CreatedAt.IsZero() {
		return "-"
	}
	return t.CreatedAt.Local().Format("2006-01-02 15:04")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
