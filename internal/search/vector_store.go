// Package search makes stored segments findable: it embeds segment text and
// runs pgvector similarity search over it.
package search

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// VectorStore handles pgvector-backed embedding storage and similarity search
// over segment primary text.
type VectorStore struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewVectorStore creates a new vector store.
func NewVectorStore(pool *pgxpool.Pool, dimensions int) *VectorStore {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &VectorStore{pool: pool, dimensions: dimensions}
}

// SegmentEmbedding represents one segment's primary text with its embedding.
type SegmentEmbedding struct {
	SegmentID string
	ContentID string
	Language  string
	Text      string
	Vector    []float32
}

// SearchResult represents a similarity search match.
type SearchResult struct {
	SegmentID string
	ContentID string
	Text      string
	Score     float64
}

// EnsureSchema creates the embeddings table. Requires the pgvector extension.
func (vs *VectorStore) EnsureSchema(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("ensure vector extension: %w", err)
	}

	_, err := vs.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS segment_embeddings (
			segment_id TEXT PRIMARY KEY,
			content_id TEXT NOT NULL,
			language   TEXT NOT NULL,
			text       TEXT NOT NULL,
			embedding  vector(%d)
		)
	`, vs.dimensions))
	if err != nil {
		return fmt.Errorf("create segment_embeddings table: %w", err)
	}

	log.Info().Msg("Vector schema ensured")
	return nil
}

// Store upserts embedding records.
func (vs *VectorStore) Store(ctx context.Context, records []SegmentEmbedding) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		_, err := vs.pool.Exec(ctx, `
			INSERT INTO segment_embeddings (segment_id, content_id, language, text, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (segment_id) DO UPDATE
			SET text = EXCLUDED.text, embedding = EXCLUDED.embedding
		`, r.SegmentID, r.ContentID, r.Language, r.Text, pgvector.NewVector(r.Vector))
		if err != nil {
			return fmt.Errorf("insert embedding %s: %w", r.SegmentID, err)
		}
	}

	log.Info().Int("count", len(records)).Msg("Stored segment embeddings")
	return nil
}

// Search finds the top-K segments most similar to the query vector.
func (vs *VectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]SearchResult, error) {
	rows, err := vs.pool.Query(ctx, `
		SELECT segment_id, content_id, text, 1 - (embedding <=> $1) AS similarity
		FROM segment_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(queryVector), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.SegmentID, &r.ContentID, &r.Text, &r.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}

	return results, nil
}
