package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for project assignments.
type Repository interface {
	ListAssignments(ctx context.Context, teamID string) ([]Assignment, error)
	InsertAssignment(ctx context.Context, a Assignment) error
	DeleteAssignments(ctx context.Context, projectID, teamID string) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListAssignments(ctx context.Context, teamID string) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, project_id, team_id, created_at
FROM project_assignments WHERE ($1 = '' OR team_id = $1) ORDER BY created_at, id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TeamID, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *pgRepository) InsertAssignment(ctx context.Context, a Assignment) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO project_assignments (id, project_id, team_id, created_at)
VALUES ($1, $2, $3, $4)`, a.ID, a.ProjectID, a.TeamID, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAssignmentExists
		}
		return err
	}
	return nil
}

// DeleteAssignments removes every row for the pair and reports how many
// went away. Duplicates that predate the unique index are cleaned up in
// the same call.
func (r *pgRepository) DeleteAssignments(ctx context.Context, projectID, teamID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_assignments WHERE project_id=$1 AND team_id=$2`, projectID, teamID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
