package vecindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Postgres implements Index on a pgvector-enabled PostgreSQL table.
// It shares the catalog's connection pool; the pool must register
// pgvector types on connect.
type Postgres struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewPostgres creates a pgvector-backed index with the given vector dimension.
func NewPostgres(pool *pgxpool.Pool, dimension int) *Postgres {
	return &Postgres{pool: pool, dimension: dimension}
}

// EnsureSchema creates the vector extension, table and ANN index if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS job_vectors (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb
		)`, p.dimension))
	if err != nil {
		return fmt.Errorf("failed to create job_vectors table: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_job_vectors_embedding
		ON job_vectors USING hnsw (embedding vector_cosine_ops)`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}

// Upsert writes entries, overwriting vector and metadata for existing IDs.
func (p *Postgres) Upsert(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if len(e.Vector) != p.dimension {
			return fmt.Errorf("vector for %s has dimension %d, index expects %d", e.ID, len(e.Vector), p.dimension)
		}

		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", e.ID, err)
		}

		_, err = p.pool.Exec(ctx,
			`INSERT INTO job_vectors (id, embedding, metadata)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET embedding = $2, metadata = $3`,
			e.ID, pgvector.NewVector(e.Vector), metadata)
		if err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", e.ID, err)
		}
	}
	return nil
}

// Query returns the k nearest entries by cosine similarity, best first.
func (p *Postgres) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, 1 - (embedding <=> $1) AS score, metadata
		 FROM job_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		var m Match
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.Score, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", m.ID, err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vector matches: %w", err)
	}
	return matches, nil
}
