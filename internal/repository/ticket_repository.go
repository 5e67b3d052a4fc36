package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// TicketFilter narrows a ticket listing. Zero values mean "any".
type TicketFilter struct {
	Status          domain.TicketStatus
	CreatedByUserID int64
	// Limit of zero returns every match.
	Limit  int
	Offset int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists status and assignment, but only if the stored status still
	// equals expected. Otherwise ErrStaleStatus is returned.
	Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// List returns matches newest first together with the total match count.
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.id, t.title, t.description, t.category,
        COALESCE(t.location, ''), COALESCE(t.block, ''), COALESCE(t.room_no, ''),
        t.priority, t.status, t.created_by_user_id, COALESCE(creator.name, ''),
        t.assigned_to_user_id, COALESCE(assignee.name, ''), t.created_at`

const ticketJoins = `
        FROM tickets t
        LEFT JOIN users creator ON creator.id = t.created_by_user_id
        LEFT JOIN users assignee ON assignee.id = t.assigned_to_user_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, location, block, room_no, priority, status, created_by_user_id)
        VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),$7,$8,$9)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Location.Text(),
		ticket.Location.Block(),
		ticket.Location.RoomNo(),
		ticket.Priority,
		ticket.Status,
		ticket.CreatedByUserID,
	).Scan(&ticket.ID, &ticket.CreatedAt); err != nil {
		return err
	}

	const nameQuery = `SELECT name FROM users WHERE id=$1`
	if err := r.pool.QueryRow(ctx, nameQuery, ticket.CreatedByUserID).Scan(&ticket.CreatedByName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_to_user_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.AssignedToUserID,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, ticket.ID); err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.CreatedByUserID > 0 {
		args = append(args, filter.CreatedByUserID)
		clauses = append(clauses, fmt.Sprintf("t.created_by_user_id = $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + ticketColumns + ticketJoins + where + ` ORDER BY t.created_at DESC, t.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, total, rows.Err()
}

func (r *ticketRepository) Stats(ctx context.Context) (domain.Stats, error) {
	const query = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'OPEN'),
            COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
            COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
            COUNT(*) FILTER (WHERE status = 'RESOLVED'),
            COUNT(*) FILTER (WHERE status = 'CLOSED')
        FROM tickets`
	var stats domain.Stats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalTickets,
		&stats.OpenTickets,
		&stats.AssignedTickets,
		&stats.InProgressTickets,
		&stats.ResolvedTickets,
		&stats.ClosedTickets,
	)
	return stats, err
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var (
		ticket                 domain.Ticket
		location, block, roomNo string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&location,
		&block,
		&roomNo,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedByUserID,
		&ticket.CreatedByName,
		&ticket.AssignedToUserID,
		&ticket.AssignedToName,
		&ticket.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, ErrNotFound
		}
		return domain.Ticket{}, err
	}
	ticket.Location = domain.LocationFromParts(location, block, roomNo)
	return ticket, nil
}
