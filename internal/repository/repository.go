package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoQueuedJob is returned when no job is waiting in the queue.
	ErrNoQueuedJob = errors.New("no queued job")
	// ErrAlreadyClaimed is returned when the selected job left the queued state before the claim.
	ErrAlreadyClaimed = errors.New("already taken")
	// ErrNotProcessing is returned when finalizing a job that this caller does not hold.
	ErrNotProcessing = errors.New("job is not processing")
)

// Database is the subset of *pgxpool.Pool used by the repository.
// pgxmock.PgxPoolIface satisfies it in tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface lists every store operation the queue, quota tracker and worker depend on.
type Interface interface {
	InsertJobs(ctx context.Context, userID string, rows []models.Row, now time.Time) ([]uuid.UUID, error)
	ClaimOldestQueued(ctx context.Context, now time.Time) (*models.Job, error)
	CompleteJob(ctx context.Context, customer models.Customer, now time.Time) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, now time.Time) error
	CountCreatedInWindow(ctx context.Context, userID string, start, end time.Time) (int, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
