package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const jobColumns = `id, user_id, address, birth, sex, status, attempts, last_error, created_at, updated_at`

const selectOldestQueuedQuery = `
		SELECT id
		FROM customer_jobs
		WHERE status = 'queued'
		ORDER BY created_at ASC
		LIMIT 1;
	`

const claimJobQuery = `
		UPDATE customer_jobs
		SET
			status = 'processing',
			attempts = attempts + 1,
			updated_at = $2
		WHERE id = $1 AND status = 'queued'
		RETURNING ` + jobColumns + `;
	`

const insertCustomerQuery = `
		INSERT INTO customer (job_id, user_id, address, birth, sex, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

const markDoneQuery = `
		UPDATE customer_jobs
		SET
			status = 'done',
			updated_at = $2
		WHERE id = $1 AND status = 'processing';
	`

const markFailedQuery = `
		UPDATE customer_jobs
		SET
			status = 'failed',
			last_error = $2,
			updated_at = $3
		WHERE id = $1 AND status = 'processing';
	`

const countCreatedQuery = `
		SELECT COUNT(*)
		FROM customer_jobs
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3;
	`

// insertJobColumns is the number of bind parameters per inserted job row.
const insertJobColumns = 6

// maxJobsPerStatement keeps one INSERT under the 65535 bind parameter limit of Postgres.
const maxJobsPerStatement = 65535 / insertJobColumns

// InsertJobs stores rows as queued jobs, so either every row is inserted or none is.
// Each row gets created_at = now plus its index in microseconds, keeping the batch
// in upload order for oldest-first selection.
func (r *Repository) InsertJobs(
	ctx context.Context,
	userID string,
	rows []models.Row,
	now time.Time,
) ([]uuid.UUID, error) {
	return r.insertJobBatches(ctx, userID, rows, now, maxJobsPerStatement)
}

// insertJobBatches writes rows in statements of at most batchSize rows. More than
// one statement runs inside a single transaction.
func (r *Repository) insertJobBatches(
	ctx context.Context,
	userID string,
	rows []models.Row,
	now time.Time,
	batchSize int,
) ([]uuid.UUID, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	if len(rows) <= batchSize {
		ids, err := insertJobs(ctx, r.db, userID, rows, now, 0)
		if err != nil {
			return nil, err
		}
		r.log.DebugContext(ctx, "Jobs were queued.", "user", userID, "count", len(ids))
		return ids, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ids := make([]uuid.UUID, 0, len(rows))
	for offset := 0; offset < len(rows); offset += batchSize {
		batch := rows[offset:min(offset+batchSize, len(rows))]
		batchIDs, err := insertJobs(ctx, tx, userID, batch, now, offset)
		if err != nil {
			return nil, err
		}
		ids = append(ids, batchIDs...)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.DebugContext(ctx, "Jobs were queued.", "user", userID, "count", len(ids))

	return ids, nil
}

// insertJobs runs one multi-row INSERT. offset is the position of rows[0] in the upload.
func insertJobs(
	ctx context.Context,
	db execer,
	userID string,
	rows []models.Row,
	now time.Time,
	offset int,
) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	args := make([]any, 0, len(rows)*insertJobColumns)
	values := make([]string, 0, len(rows))

	for idx, row := range rows {
		id := uuid.New()
		createdAt := now.Add(time.Duration(offset+idx) * time.Microsecond)
		base := idx * insertJobColumns

		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, 'queued', $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+6))
		args = append(args, id, userID, row.Address, row.Birth, sexArg(row.Sex), createdAt)
		ids = append(ids, id)
	}

	query := "INSERT INTO customer_jobs (id, user_id, address, birth, sex, status, created_at, updated_at) VALUES " +
		strings.Join(values, ", ")

	if _, err := db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert jobs: %w", err)
	}

	return ids, nil
}

// ClaimOldestQueued selects the oldest queued job and claims it by moving it to
// processing with a conditional update. The selection is advisory; the update's
// status guard is what makes the claim exclusive. It returns ErrNoQueuedJob when
// the queue is empty and ErrAlreadyClaimed when another caller won the race.
func (r *Repository) ClaimOldestQueued(ctx context.Context, now time.Time) (*models.Job, error) {
	var jobID uuid.UUID
	err := r.db.QueryRow(ctx, selectOldestQueuedQuery).Scan(&jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoQueuedJob
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select oldest queued job: %w", err)
	}

	return r.ClaimJob(ctx, jobID, now)
}

// ClaimJob moves the job from queued to processing, incrementing attempts.
// It returns ErrAlreadyClaimed when the job is no longer queued or does not exist.
func (r *Repository) ClaimJob(ctx context.Context, jobID uuid.UUID, now time.Time) (*models.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, claimJobQuery, jobID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.DebugContext(ctx, "Job was claimed by another worker.", "job", jobID)
		return nil, ErrAlreadyClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	return job, nil
}

// CompleteJob inserts the customer record and marks its job done in one transaction.
// Nothing is committed unless both writes succeed.
func (r *Repository) CompleteJob(ctx context.Context, customer models.Customer, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = insertCustomer(ctx, tx, customer); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, markDoneQuery, customer.JobID, now)
	if err != nil {
		return fmt.Errorf("failed to mark job done: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotProcessing
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkFailed moves a processing job to failed and records errMsg as its last error.
func (r *Repository) MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, now time.Time) error {
	tag, err := r.db.Exec(ctx, markFailedQuery, jobID, errMsg, now)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotProcessing
	}

	return nil
}

// CountCreatedInWindow counts the jobs userID created within [start, end), regardless of status.
func (r *Repository) CountCreatedInWindow(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countCreatedQuery, userID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs in window: %w", err)
	}

	return count, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertCustomer(ctx context.Context, db execer, customer models.Customer) error {
	_, err := db.Exec(ctx, insertCustomerQuery,
		customer.JobID, customer.UserID, customer.Address, customer.Birth, string(customer.Sex),
		customer.Lat, customer.Lng,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		job    models.Job
		sex    *string
		status string
	)

	err := row.Scan(&job.ID, &job.UserID, &job.Address, &job.Birth, &sex, &status,
		&job.Attempts, &job.LastError, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = models.Status(status)
	if sex != nil {
		s := models.Sex(*sex)
		job.Sex = &s
	}

	return &job, nil
}

func sexArg(sex *models.Sex) *string {
	if sex == nil {
		return nil
	}
	s := string(*sex)

	return &s
}
