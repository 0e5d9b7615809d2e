package authz

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upteky/upteky-central/internal/platform/db"
)

// PGStoreRepository provides PostgreSQL backed matrix persistence.
type PGStoreRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository constructs a repository.
func NewStoreRepository(pool *pgxpool.Pool) *PGStoreRepository {
	return &PGStoreRepository{pool: pool}
}

var _ StoreRepository = (*PGStoreRepository)(nil)

// LoadMatrix reads the whole stored matrix in one query.
func (r *PGStoreRepository) LoadMatrix(ctx context.Context) (Matrix, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, permission FROM role_permissions ORDER BY role, permission`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matrix := make(Matrix)
	for rows.Next() {
		var role, perm string
		if err := rows.Scan(&role, &perm); err != nil {
			return nil, err
		}
		matrix[Role(role)] = append(matrix[Role(role)], Permission(perm))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// ReplaceMatrix rewrites every non-Admin row in a single transaction.
func (r *PGStoreRepository) ReplaceMatrix(ctx context.Context, m Matrix) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role <> $1`, string(RoleAdmin)); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for role, perms := range m {
			for _, perm := range perms {
				batch.Queue(`INSERT INTO role_permissions (role, permission) VALUES ($1, $2)`, string(role), string(perm))
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}
		return results.Close()
	})
}
