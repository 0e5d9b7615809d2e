package tickets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upteky/upteky-central/internal/platform/db"
	"github.com/upteky/upteky-central/internal/tasks"
)

// Repository defines data access methods for tickets.
type Repository interface {
	ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, error)
	GetTicket(ctx context.Context, id string) (Ticket, error)
	ListReplies(ctx context.Context, ticketID string) ([]Reply, error)
	InsertReply(ctx context.Context, reply Reply) error
	WithTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository exposes the writes that participate in the conversion
// transaction. All three happen against the same pgx.Tx, so the linked
// task, the ticket update and the system reply commit or roll back
// together.
type TxRepository interface {
	GetTicketForUpdate(ctx context.Context, id string) (Ticket, error)
	InsertTask(ctx context.Context, task tasks.Task) error
	SetLinkedTask(ctx context.Context, ticketID, taskID, status string) error
	InsertReply(ctx context.Context, reply Reply) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const ticketColumns = `id, subject, description, status, priority, requester_id, assignee_id, linked_task_id, created_at, updated_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.RequesterID, &t.AssigneeID, &t.LinkedTaskID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *pgRepository) ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ($1 = '' OR status = $1) AND ($2 = '' OR priority = $2) AND ($3 = '' OR assignee_id = $3) ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, query, filter.Status, filter.Priority, filter.AssigneeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *pgRepository) GetTicket(ctx context.Context, id string) (Ticket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

func (r *pgRepository) ListReplies(ctx context.Context, ticketID string) ([]Reply, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ticket_id, author_id, author_name, message, is_internal_note, created_at
FROM ticket_replies WHERE ticket_id=$1 ORDER BY created_at, id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Reply
	for rows.Next() {
		var rep Reply
		if err := rows.Scan(&rep.ID, &rep.TicketID, &rep.AuthorID, &rep.AuthorName, &rep.Message, &rep.IsInternalNote, &rep.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

func (r *pgRepository) InsertReply(ctx context.Context, reply Reply) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO ticket_replies (id, ticket_id, author_id, author_name, message, is_internal_note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reply.ID, reply.TicketID, reply.AuthorID, reply.AuthorName, reply.Message, reply.IsInternalNote, reply.CreatedAt)
	return err
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTxRepository{tx: tx})
	})
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) GetTicketForUpdate(ctx context.Context, id string) (Ticket, error) {
	t, err := scanTicket(r.tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

func (r *pgTxRepository) InsertTask(ctx context.Context, task tasks.Task) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO tasks (id, title, description, status, priority, progress, assignee_id, linked_ticket_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.Progress, task.AssigneeID, task.LinkedTicketID, task.CreatedAt)
	return err
}

func (r *pgTxRepository) SetLinkedTask(ctx context.Context, ticketID, taskID, status string) error {
	tag, err := r.tx.Exec(ctx, `UPDATE tickets SET linked_task_id=$2, status=$3, updated_at=now() WHERE id=$1`, ticketID, taskID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *pgTxRepository) InsertReply(ctx context.Context, reply Reply) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO ticket_replies (id, ticket_id, author_id, author_name, message, is_internal_note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reply.ID, reply.TicketID, reply.AuthorID, reply.AuthorName, reply.Message, reply.IsInternalNote, reply.CreatedAt)
	return err
}
