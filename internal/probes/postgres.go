package probes

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresProbe checks PostgreSQL over a database/sql connection
type PostgresProbe struct {
	db *sql.DB
}

// NewPostgresProbe opens a connection for health checks. The connection is
// kept small since it only serves probes.
func NewPostgresProbe(dsn string) (*PostgresProbe, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &PostgresProbe{db: db}, nil
}

// Name returns the probe name
func (p *PostgresProbe) Name() string {
	return "postgres"
}

// HealthCheck verifies connectivity and that the content schema is migrated
func (p *PostgresProbe) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT to_regclass('public.catalog_entries') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("content schema not migrated")
	}
	return nil
}

// Close closes the probe connection
func (p *PostgresProbe) Close() error {
	return p.db.Close()
}
