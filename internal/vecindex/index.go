// Package vecindex provides nearest-neighbor search over embedding vectors.
package vecindex

import "context"

// Entry is one vector to store, keyed by a stable string ID. Upserting
// an existing ID overwrites the previous vector and metadata.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match is one query result. Score is cosine similarity in [-1, 1],
// higher is closer.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Index is a nearest-neighbor store. Implementations must return
// Query results ordered by descending similarity, and an empty slice
// (not an error) when nothing is indexed.
type Index interface {
	Upsert(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)
}
