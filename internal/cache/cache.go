package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"chirpter-segmenter/internal/parser"
	"chirpter-segmenter/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ParseCache provides in-memory + PostgreSQL-backed caching of parsed segment
// lists, keyed by a hash of the raw text and origin descriptor. Re-parsing
// the same generated text is the common case upstream.
type ParseCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string][]parser.Segment
}

// NewParseCache creates a new cache backed by PostgreSQL.
func NewParseCache(pool *pgxpool.Pool) *ParseCache {
	return &ParseCache{
		pool:   pool,
		memory: make(map[string][]parser.Segment),
	}
}

// EnsureSchema creates the cache table.
func (c *ParseCache) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS parse_cache (
			hash     TEXT PRIMARY KEY,
			segments JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create parse_cache table: %w", err)
	}
	return nil
}

// key derives the cache key for a raw text/origin pair.
func key(rawText, origin string) string {
	return textutil.Hash(rawText + "\x00" + origin)
}

// Get retrieves a cached parse result. Returns nil and false if not found.
func (c *ParseCache) Get(ctx context.Context, rawText, origin string) ([]parser.Segment, bool) {
	h := key(rawText, origin)

	// Check in-memory cache first.
	c.mu.RLock()
	if segs, ok := c.memory[h]; ok {
		c.mu.RUnlock()
		return segs, true
	}
	c.mu.RUnlock()

	var data []byte
	err := c.pool.QueryRow(ctx, `SELECT segments FROM parse_cache WHERE hash = $1`, h).Scan(&data)
	if err != nil {
		return nil, false
	}

	var segs []parser.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		log.Warn().Err(err).Str("hash", h).Msg("Dropping undecodable cache entry")
		return nil, false
	}

	// Populate in-memory cache.
	c.mu.Lock()
	c.memory[h] = segs
	c.mu.Unlock()

	return segs, true
}

// Set stores a parse result in both in-memory and PostgreSQL cache.
func (c *ParseCache) Set(ctx context.Context, rawText, origin string, segments []parser.Segment) error {
	h := key(rawText, origin)

	c.mu.Lock()
	c.memory[h] = segments
	c.mu.Unlock()

	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO parse_cache (hash, segments) VALUES ($1, $2)
		ON CONFLICT (hash) DO UPDATE SET segments = EXCLUDED.segments
	`, h, data)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Preload loads all cached parse results into memory.
func (c *ParseCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT hash, segments FROM parse_cache`)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var h string
		var data []byte
		if err := rows.Scan(&h, &data); err != nil {
			return fmt.Errorf("scan cache row: %w", err)
		}
		var segs []parser.Segment
		if err := json.Unmarshal(data, &segs); err != nil {
			continue
		}
		c.memory[h] = segs
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cache rows: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded parse cache")
	return nil
}
