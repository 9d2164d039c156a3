// Package db provides PostgreSQL access to the occupational competency catalog.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database. The pool
// registers pgvector types on every connection so the vector index
// can share it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool exposes the underlying pool for collaborators that share the
// same database (the vector index).
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS job_competencies (
			id SERIAL PRIMARY KEY,
			onet_soc_code VARCHAR(255) NOT NULL,
			title VARCHAR(255),
			description TEXT,
			element_id VARCHAR(255),
			element_name VARCHAR(255),
			element_type VARCHAR(32),
			scale_id VARCHAR(255),
			scale_name VARCHAR(255),
			data_value NUMERIC,
			n INTEGER,
			standard_error NUMERIC,
			lower_ci_bound NUMERIC,
			upper_ci_bound NUMERIC,
			recommend_suppress VARCHAR(10),
			not_relevant VARCHAR(10),
			date DATE,
			domain_source VARCHAR(255)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create job_competencies table: %w", err)
	}

	_, err = db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ingest_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			source VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL,
			row_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("failed to create ingest_runs table: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_job_competencies_code ON job_competencies (onet_soc_code)`)
	if err != nil {
		return fmt.Errorf("failed to create catalog index: %w", err)
	}

	return nil
}
