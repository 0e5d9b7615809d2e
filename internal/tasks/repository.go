package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upteky/upteky-central/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTasks returns all tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, description, status, priority, progress, assignee_id, linked_ticket_id, created_at
FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Progress, &t.AssigneeID, &t.LinkedTicketID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetTask fetches a task by id.
func (r *Repository) GetTask(ctx context.Context, id string) (Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx, `SELECT id, title, description, status, priority, progress, assignee_id, linked_ticket_id, created_at
FROM tasks WHERE id=$1`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Progress, &t.AssigneeID, &t.LinkedTicketID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}
