package teams

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines team data access.
type Repository interface {
	ListTeams(ctx context.Context) ([]Team, error)
	ListMemberships(ctx context.Context) ([]Membership, error)
	ListToolAccess(ctx context.Context, teamID string) ([]ToolAccess, error)
	InsertToolAccess(ctx context.Context, access ToolAccess) error
	DeleteToolAccess(ctx context.Context, teamID, toolID string) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *pgRepository) ListMemberships(ctx context.Context) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, team_id, user_id, team_role, reports_to_member_id, created_at FROM team_members ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.TeamRole, &m.ReportsToMemberID, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *pgRepository) ListToolAccess(ctx context.Context, teamID string) ([]ToolAccess, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, team_id, tool_id, granted_at FROM team_tool_access WHERE team_id=$1 ORDER BY tool_id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accesses []ToolAccess
	for rows.Next() {
		var a ToolAccess
		if err := rows.Scan(&a.ID, &a.TeamID, &a.ToolID, &a.GrantedAt); err != nil {
			return nil, err
		}
		accesses = append(accesses, a)
	}
	return accesses, rows.Err()
}

func (r *pgRepository) InsertToolAccess(ctx context.Context, access ToolAccess) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO team_tool_access (id, team_id, tool_id, granted_at) VALUES ($1, $2, $3, $4)`,
		access.ID, access.TeamID, access.ToolID, access.GrantedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAccessExists
		}
		return err
	}
	return nil
}

// DeleteToolAccess removes every record for the pair; duplicates left
// behind by earlier writers are cleaned up with the one being revoked.
func (r *pgRepository) DeleteToolAccess(ctx context.Context, teamID, toolID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM team_tool_access WHERE team_id=$1 AND tool_id=$2`, teamID, toolID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
