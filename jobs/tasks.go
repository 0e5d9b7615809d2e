package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upteky/upteky-central/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup purges aged idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskStaleOvertimeScan reports overtime reviews left pending too long.
	TaskStaleOvertimeScan = "attendance:stale_overtime_scan"
)

// IdempotencyCleanupPayload configures the cleanup run.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// IdempotencyCleanupJob removes idempotency keys past retention.
type IdempotencyCleanupJob struct {
	store  *shared.IdempotencyStore
	logger *slog.Logger
}

// NewIdempotencyCleanupJob constructs the job.
func NewIdempotencyCleanupJob(store *shared.IdempotencyStore, logger *slog.Logger) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{store: store, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := 72 * time.Hour
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}
	if err := j.store.Cleanup(ctx, retention); err != nil {
		j.logger.Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	j.logger.Info("idempotency cleanup complete", slog.Duration("retention", retention))
	return nil
}

// StaleOvertimeScanPayload configures the scan window.
type StaleOvertimeScanPayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// NewStaleOvertimeScanTask constructs an Asynq task.
func NewStaleOvertimeScanTask(olderThanHours int) (*asynq.Task, error) {
	data, err := json.Marshal(StaleOvertimeScanPayload{OlderThanHours: olderThanHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleOvertimeScan, data), nil
}

// StaleOvertimeScanJob surfaces overtime requests that have sat in
// Pending beyond the window so reviewers can be chased.
type StaleOvertimeScanJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStaleOvertimeScanJob constructs the job.
func NewStaleOvertimeScanJob(pool *pgxpool.Pool, logger *slog.Logger) *StaleOvertimeScanJob {
	return &StaleOvertimeScanJob{pool: pool, logger: logger}
}

// Handle processes TaskStaleOvertimeScan tasks.
func (j *StaleOvertimeScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StaleOvertimeScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	window := 7 * 24 * time.Hour
	if payload.OlderThanHours > 0 {
		window = time.Duration(payload.OlderThanHours) * time.Hour
	}
	cutoff := time.Now().Add(-window)

	rows, err := j.pool.Query(ctx, `SELECT id, user_id, work_date FROM attendance_records
WHERE overtime_approval_status = 'Pending' AND work_date < $1 ORDER BY work_date`, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, userID string
		var workDate time.Time
		if err := rows.Scan(&id, &userID, &workDate); err != nil {
			return err
		}
		count++
		j.logger.Warn("stale overtime review",
			slog.String("record_id", id),
			slog.String("user_id", userID),
			slog.Time("work_date", workDate))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	j.logger.Info("stale overtime scan complete", slog.Int("pending", count))
	return nil
}
