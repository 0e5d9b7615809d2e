package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errNotPending signals the conditional review update matched no row.
// The service re-reads to distinguish a missing record from one already
// reviewed.
var errNotPending = errors.New("attendance: no pending record matched")

// ReviewUpdate carries the reviewer-supplied fields of a review commit.
type ReviewUpdate struct {
	RecordID   string
	Decision   ReviewDecision
	ReviewerID string
	ReviewedAt time.Time
	Comment    *string
}

// RepositoryPort defines data access methods for attendance records.
type RepositoryPort interface {
	ListRecords(ctx context.Context) ([]Record, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	ReviewOvertime(ctx context.Context, update ReviewUpdate) (Record, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, user_id, work_date, worked_hours, potential_overtime_hours,
overtime_approval_status, approved_overtime_hours, overtime_approved_by, overtime_approved_at, admin_comment`

// ListRecords returns all records, newest date first.
func (r *Repository) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM attendance_records ORDER BY work_date DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecord fetches a record by id.
func (r *Repository) GetRecord(ctx context.Context, id string) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM attendance_records WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ReviewOvertime commits the review as a single conditional update
// guarded on the Pending status. The guard and the write are one
// statement, so two concurrent reviews resolve to exactly one winner.
func (r *Repository) ReviewOvertime(ctx context.Context, update ReviewUpdate) (Record, error) {
	row := r.pool.QueryRow(ctx, `UPDATE attendance_records SET
  overtime_approval_status = $2,
  overtime_approved_by = $3,
  overtime_approved_at = $4,
  admin_comment = $5,
  approved_overtime_hours = CASE WHEN $2 = 'Approved' THEN potential_overtime_hours ELSE 0 END
WHERE id = $1 AND overtime_approval_status = 'Pending'
RETURNING `+recordColumns,
		update.RecordID, string(update.Decision), update.ReviewerID, update.ReviewedAt, update.Comment)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, errNotPending
		}
		return Record{}, err
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var status string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.WorkDate, &rec.WorkedHours, &rec.PotentialOvertimeHours,
		&status, &rec.ApprovedOvertimeHours, &rec.OvertimeApprovedBy, &rec.OvertimeApprovedAt, &rec.AdminComment)
	if err != nil {
		return Record{}, err
	}
	rec.OvertimeApprovalStatus = ApprovalStatus(status)
	return rec, nil
}
