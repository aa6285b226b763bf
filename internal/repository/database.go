package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ConnString builds a postgres:// connection string from its parts.
func ConnString(host, port, user, password, name string) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}

	return dsn.String()
}

// NewDatabase opens a connection pool and checks it with a ping.
func NewDatabase(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations applies the embedded schema migrations to the database at connString.
func RunMigrations(connString string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	dsn, err := url.Parse(connString)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	dsn.Scheme = "pgx5"

	mig, err := migrate.NewWithSourceInstance("iofs", source, dsn.String())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer mig.Close()

	if err = mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
