package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateIngestRun creates a new ingest run record and returns its ID
func (db *DB) CreateIngestRun(ctx context.Context, source string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO ingest_runs (source, status)
		 VALUES ($1, 'running')
		 RETURNING id`,
		source,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create ingest run: %w", err)
	}
	return id, nil
}

// CompleteIngestRun marks an ingest run as completed with its final row count
func (db *DB) CompleteIngestRun(ctx context.Context, runID uuid.UUID, status string, rowCount int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, row_count = $2, completed_at = NOW() WHERE id = $3`,
		status, rowCount, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete ingest run: %w", err)
	}
	return nil
}

// ListIngestRuns retrieves recent ingest runs, newest first
func (db *DB) ListIngestRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, source, status, row_count, created_at, completed_at
		 FROM ingest_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var run IngestRun
		if err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.RowCount, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingest run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
