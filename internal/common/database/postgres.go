// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lead-intake/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an existing handle, e.g. one from sqlmock.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// ExecContext executes a statement that doesn't return rows
func (c *PostgresClient) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row
func (c *PostgresClient) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// Migrate creates the submission ledger table if it does not exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("migrate form_submissions: %w", err)
	}
	return nil
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS form_submissions (
    id               UUID PRIMARY KEY,
    file_name        TEXT NOT NULL UNIQUE,
    business_name    TEXT NOT NULL,
    business_domain  TEXT NOT NULL,
    primary_language TEXT NOT NULL,
    budget_type      TEXT NOT NULL,
    budget_amount    TEXT NOT NULL,
    record           JSONB NOT NULL,
    submitted_at     TIMESTAMPTZ NOT NULL
)`
