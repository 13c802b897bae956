// Package graph mirrors parsed content into a Neo4j graph: content items own
// ordered segment nodes, and segments link to the languages they carry.
package graph

import (
	"context"
	"fmt"

	"chirpter-segmenter/internal/parser"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// ContentGraph maintains the Neo4j content graph.
type ContentGraph struct {
	driver neo4j.DriverWithContext
}

// NewContentGraph creates a new content graph.
func NewContentGraph(driver neo4j.DriverWithContext) *ContentGraph {
	return &ContentGraph{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (cg *ContentGraph) EnsureSchema(ctx context.Context) error {
	session := cg.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Content) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Segment) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Language) REQUIRE l.code IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Content graph schema ensured")
	return nil
}

// UpsertContent mirrors a content item and its segments into the graph.
// Segment order lives on the HAS_SEGMENT edge so ordered traversal needs no
// node property scan.
func (cg *ContentGraph) UpsertContent(ctx context.Context, contentID, origin string, segments []parser.Segment) error {
	session := cg.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (c:Content {id: $id})
		SET c.origin = $origin
	`, map[string]any{
		"id":     contentID,
		"origin": origin,
	})
	if err != nil {
		return fmt.Errorf("upsert content node: %w", err)
	}

	for _, seg := range segments {
		_, err := session.Run(ctx, `
			MATCH (c:Content {id: $content})
			MERGE (s:Segment {id: $id})
			MERGE (c)-[r:HAS_SEGMENT]->(s)
			SET r.order = $order
		`, map[string]any{
			"content": contentID,
			"id":      seg.ID,
			"order":   seg.Order,
		})
		if err != nil {
			return fmt.Errorf("upsert segment %s: %w", seg.ID, err)
		}

		for lang := range seg.Block {
			_, err := session.Run(ctx, `
				MATCH (s:Segment {id: $id})
				MERGE (l:Language {code: $lang})
				MERGE (s)-[:IN_LANGUAGE]->(l)
			`, map[string]any{
				"id":   seg.ID,
				"lang": lang,
			})
			if err != nil {
				log.Warn().Err(err).Str("segment", seg.ID).Str("lang", lang).Msg("Failed to link language")
			}
		}
	}

	log.Info().Str("content", contentID).Int("segments", len(segments)).Msg("Upserted content graph")
	return nil
}

// SegmentsInOrder returns the segment IDs of a content item in display order.
func (cg *ContentGraph) SegmentsInOrder(ctx context.Context, contentID string) ([]string, error) {
	session := cg.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Content {id: $id})-[r:HAS_SEGMENT]->(s:Segment)
		RETURN s.id AS id
		ORDER BY r.order
	`, map[string]any{"id": contentID})
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}

	var ids []string
	for result.Next(ctx) {
		id, _ := result.Record().Get("id")
		ids = append(ids, fmt.Sprintf("%v", id))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment records: %w", err)
	}

	return ids, nil
}

// Languages returns the language codes attached to a content item's segments.
func (cg *ContentGraph) Languages(ctx context.Context, contentID string) ([]string, error) {
	session := cg.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (:Content {id: $id})-[:HAS_SEGMENT]->(:Segment)-[:IN_LANGUAGE]->(l:Language)
		RETURN DISTINCT l.code AS code
		ORDER BY code
	`, map[string]any{"id": contentID})
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}

	var codes []string
	for result.Next(ctx) {
		code, _ := result.Record().Get("code")
		codes = append(codes, fmt.Sprintf("%v", code))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate language records: %w", err)
	}

	return codes, nil
}
