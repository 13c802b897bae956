// Package store persists parsed segments in PostgreSQL. The engine itself is
// storage-free; this is the layer that later holds the returned segment list.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"chirpter-segmenter/internal/parser"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// SegmentStore handles persistence of parsed segments in PostgreSQL.
type SegmentStore struct {
	pool *pgxpool.Pool
}

// NewSegmentStore creates a new segment store.
func NewSegmentStore(pool *pgxpool.Pool) *SegmentStore {
	return &SegmentStore{pool: pool}
}

// EnsureSchema creates the segments table and its indexes.
func (ss *SegmentStore) EnsureSchema(ctx context.Context) error {
	_, err := ss.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS segments (
			id            TEXT PRIMARY KEY,
			content_id    TEXT NOT NULL,
			origin        TEXT NOT NULL,
			segment_order INT  NOT NULL,
			content       JSONB NOT NULL,
			UNIQUE (content_id, segment_order)
		)
	`)
	if err != nil {
		return fmt.Errorf("create segments table: %w", err)
	}

	_, err = ss.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_segments_content ON segments (content_id, segment_order)
	`)
	if err != nil {
		return fmt.Errorf("create segments index: %w", err)
	}

	log.Info().Msg("Segment schema ensured")
	return nil
}

// SaveSegments replaces all segments of a content item in one transaction so
// the stored order range stays contiguous.
func (ss *SegmentStore) SaveSegments(ctx context.Context, contentID, origin string, segments []parser.Segment) error {
	tx, err := ss.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE content_id = $1`, contentID); err != nil {
		return fmt.Errorf("clear previous segments: %w", err)
	}

	for _, seg := range segments {
		content, err := json.Marshal(seg)
		if err != nil {
			return fmt.Errorf("encode segment %s: %w", seg.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO segments (id, content_id, origin, segment_order, content)
			VALUES ($1, $2, $3, $4, $5)
		`, seg.ID, contentID, origin, seg.Order, content)
		if err != nil {
			return fmt.Errorf("insert segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit segments: %w", err)
	}

	log.Info().Str("content", contentID).Int("segments", len(segments)).Msg("Saved segments")
	return nil
}

// GetSegments retrieves all segments of a content item in ascending order.
func (ss *SegmentStore) GetSegments(ctx context.Context, contentID string) ([]parser.Segment, error) {
	rows, err := ss.pool.Query(ctx, `
		SELECT content FROM segments
		WHERE content_id = $1
		ORDER BY segment_order
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []parser.Segment
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan segment row: %w", err)
		}
		var seg parser.Segment
		if err := json.Unmarshal(content, &seg); err != nil {
			return nil, fmt.Errorf("decode segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	return segments, nil
}
