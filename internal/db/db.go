// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easyfitness/easyfitness-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the API and reference
// reconciliation layers use. Each lookup table carries a UNIQUE constraint on
// name; the insert statements lean on it for idempotent get-or-create.
//
// Schema (schema.sql):
//
//	CREATE TABLE muscles    (id serial PRIMARY KEY, name text NOT NULL UNIQUE, created_at timestamptz DEFAULT now());
//	CREATE TABLE equipment  (id serial PRIMARY KEY, name text NOT NULL UNIQUE, created_at timestamptz DEFAULT now());
//	CREATE TABLE body_parts (id serial PRIMARY KEY, name text NOT NULL UNIQUE, created_at timestamptz DEFAULT now());
//	CREATE TABLE keywords   (id serial PRIMARY KEY, name text NOT NULL UNIQUE, created_at timestamptz DEFAULT now());
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",
	}

	// Per-category statements, built from the registry so the table list
	// stays in one place.
	for _, cat := range config.CategoryRegistry {
		stmts["insert_"+cat.ID] = "INSERT INTO " + cat.Table + " (name) VALUES ($1) ON CONFLICT (name) DO NOTHING"
		stmts["list_"+cat.ID] = "SELECT name FROM " + cat.Table + " ORDER BY name"
		stmts["count_"+cat.ID] = "SELECT COUNT(*) FROM " + cat.Table
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
