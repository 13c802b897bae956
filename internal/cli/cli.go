package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chirpter-segmenter/internal/cache"
	"chirpter-segmenter/internal/config"
	"chirpter-segmenter/internal/filewalker"
	"chirpter-segmenter/internal/generator"
	"chirpter-segmenter/internal/graph"
	"chirpter-segmenter/internal/identifier"
	"chirpter-segmenter/internal/interpolation"
	"chirpter-segmenter/internal/parser"
	"chirpter-segmenter/internal/search"
	"chirpter-segmenter/internal/store"
	"chirpter-segmenter/internal/textutil"
	"chirpter-segmenter/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "chirpter-segmenter",
		Short: "Multilingual segmentation engine for language-learning content",
		Long:  "Parses raw story text with inline {translation} annotations into ordered, per-language segments, and manages the segment store, content graph, and semantic search index behind the Chirpter reading app.",
	}

	rootCmd.AddCommand(segmentCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func segmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment <file|->",
		Short: "Segment a single content file (or stdin) and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, _ := cmd.Flags().GetString("origin")
			return runSegment(args[0], origin)
		},
	}

	cmd.Flags().String("origin", "", "Origin descriptor, e.g. en, en-vi, en-vi-ph (default from config)")

	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Segment content files, store segments, build the content graph, and index embeddings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, _ := cmd.Flags().GetString("origin")
			return runIngest(args[0], origin)
		},
	}

	cmd.Flags().String("origin", "", "Default origin descriptor for files without one in their name")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <content-id>",
		Short: "Print stored segments for a content ID and check them against the content graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0])
		},
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a story on a topic, segment it, and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, _ := cmd.Flags().GetString("origin")
			save, _ := cmd.Flags().GetBool("save")
			return runGenerate(args[0], origin, save)
		},
	}

	cmd.Flags().String("origin", "", "Origin descriptor for the generated story (default from config)")
	cmd.Flags().Bool("save", false, "Persist the segmented story to the segment store and content graph")

	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over indexed segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top")
			return runSearch(args[0], topK)
		},
	}

	cmd.Flags().Int("top", 5, "Number of results to return")

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initDependencies creates all shared dependencies.
func initDependencies(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, neo4j.DriverWithContext, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := neo4jDriver.VerifyConnectivity(ctx); err != nil {
		pgPool.Close()
		neo4jDriver.Close(ctx)
		return nil, nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return pgPool, neo4jDriver, nil
}

func newEngine() *parser.Engine {
	return parser.NewEngine(parser.IDFunc(identifier.UUID()))
}

func resolveOrigin(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.DefaultOrigin
}

// runSegment handles the `segment` command. It runs the engine alone, with no
// database dependencies, so it is usable as a pure offline tool.
func runSegment(path, originFlag string) error {
	cfg := config.Load()
	origin := resolveOrigin(originFlag, cfg)

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	protected, mappings := interpolation.Protect(string(raw))

	segments, err := newEngine().Segment(protected, origin)
	if err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	segments = interpolation.RestoreSegments(segments, mappings)

	return printJSON(segments)
}

// parseOutput carries the result of segmenting one discovered file.
type parseOutput struct {
	ContentID string
	Origin    string
	Segments  []parser.Segment
}

// runIngest handles the `ingest` command.
func runIngest(inputDir, originFlag string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, neo4jDriver, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()
	defer neo4jDriver.Close(ctx)

	segmentStore := store.NewSegmentStore(pgPool)
	if err := segmentStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure segment schema: %w", err)
	}

	parseCache := cache.NewParseCache(pgPool)
	if err := parseCache.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure cache schema: %w", err)
	}
	if err := parseCache.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload parse cache")
	}

	vectorStore := search.NewVectorStore(pgPool, cfg.EmbeddingDimensions)
	if err := vectorStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure vector schema: %w", err)
	}

	contentGraph := graph.NewContentGraph(neo4jDriver)
	if err := contentGraph.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	w := filewalker.NewWalker(resolveOrigin(originFlag, cfg))
	entries, err := w.Walk(inputDir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}

	log.Info().Int("files", len(entries)).Msg("Starting content ingestion")

	engine := newEngine()

	parsePool := worker.NewPool[filewalker.FileEntry, parseOutput](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (parseOutput, error) {
			raw, err := filewalker.ReadFile(entry)
			if err != nil {
				return parseOutput{}, err
			}

			out := parseOutput{
				ContentID: textutil.Hash(entry.Path),
				Origin:    entry.Origin,
			}

			if cached, ok := parseCache.Get(ctx, raw, entry.Origin); ok {
				out.Segments = cached
				return out, nil
			}

			protected, mappings := interpolation.Protect(raw)
			segments, err := engine.Segment(protected, entry.Origin)
			if err != nil {
				return parseOutput{}, fmt.Errorf("segment %s: %w", entry.Path, err)
			}
			out.Segments = interpolation.RestoreSegments(segments, mappings)

			if err := parseCache.Set(ctx, raw, entry.Origin, out.Segments); err != nil {
				log.Warn().Err(err).Str("file", entry.Path).Msg("Failed to cache parse result")
			}
			return out, nil
		},
	)

	parseResults := parsePool.Execute(ctx, entries)

	var stored, failed int
	var embeddable []search.SegmentEmbedding

	for _, pr := range parseResults {
		if pr.Err != nil {
			log.Error().Err(pr.Err).Str("file", pr.Input.Path).Msg("Ingest failed")
			failed++
			continue
		}

		out := pr.Result
		if err := segmentStore.SaveSegments(ctx, out.ContentID, out.Origin, out.Segments); err != nil {
			log.Error().Err(err).Str("file", pr.Input.Path).Msg("Failed to store segments")
			failed++
			continue
		}

		if err := contentGraph.UpsertContent(ctx, out.ContentID, out.Origin, out.Segments); err != nil {
			log.Warn().Err(err).Str("content_id", out.ContentID).Msg("Failed to update content graph")
		}

		o := parser.ParseOrigin(out.Origin)
		for _, seg := range out.Segments {
			text := segmentText(seg, o.Primary)
			if text == "" {
				continue
			}
			embeddable = append(embeddable, search.SegmentEmbedding{
				SegmentID: seg.ID,
				ContentID: out.ContentID,
				Language:  o.Primary,
				Text:      text,
			})
		}

		stored++
	}

	if len(embeddable) > 0 && cfg.GeminiAPIKey != "" {
		if err := indexEmbeddings(ctx, cfg, vectorStore, embeddable); err != nil {
			log.Error().Err(err).Msg("Failed to index embeddings")
		}
	} else if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, skipping embedding index")
	}

	log.Info().
		Int("files", len(entries)).
		Int("stored", stored).
		Int("failed", failed).
		Int("indexed", len(embeddable)).
		Msg("Ingestion complete")

	return nil
}

// indexEmbeddings embeds all segment texts and stores the vectors in batches.
func indexEmbeddings(ctx context.Context, cfg *config.Config, vectorStore *search.VectorStore, records []search.SegmentEmbedding) error {
	client := search.NewEmbeddingClient(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}

	vectors, err := client.EmbedBatch(ctx, texts, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("embed segment texts: %w", err)
	}
	for i := range records {
		if i < len(vectors) {
			records[i].Vector = vectors[i]
		}
	}

	for _, batch := range worker.Batch(records, cfg.BatchSize) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := vectorStore.Store(ctx, batch); err != nil {
			return fmt.Errorf("store embeddings: %w", err)
		}
	}

	return nil
}

// runShow handles the `show` command. The segment store is the source of
// truth; the content graph is read alongside it and any divergence in
// ordering is surfaced as a warning.
func runShow(contentID string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pgPool, neo4jDriver, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()
	defer neo4jDriver.Close(ctx)

	segmentStore := store.NewSegmentStore(pgPool)
	segments, err := segmentStore.GetSegments(ctx, contentID)
	if err != nil {
		return fmt.Errorf("load segments: %w", err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("no segments stored for content %s", contentID)
	}

	contentGraph := graph.NewContentGraph(neo4jDriver)

	graphIDs, err := contentGraph.SegmentsInOrder(ctx, contentID)
	if err != nil {
		log.Warn().Err(err).Str("content_id", contentID).Msg("Failed to read segment order from graph")
	} else if len(graphIDs) != len(segments) {
		log.Warn().
			Int("stored", len(segments)).
			Int("graph", len(graphIDs)).
			Str("content_id", contentID).
			Msg("Segment count diverges between store and graph")
	} else {
		for i, seg := range segments {
			if graphIDs[i] != seg.ID {
				log.Warn().
					Int("order", i).
					Str("stored", seg.ID).
					Str("graph", graphIDs[i]).
					Msg("Segment order diverges between store and graph")
				break
			}
		}
	}

	languages, err := contentGraph.Languages(ctx, contentID)
	if err != nil {
		log.Warn().Err(err).Str("content_id", contentID).Msg("Failed to read languages from graph")
	} else {
		log.Info().Strs("languages", languages).Int("segments", len(segments)).Msg("Content loaded")
	}

	return printJSON(segments)
}

// runGenerate handles the `generate` command.
func runGenerate(topic, originFlag string, save bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	origin := resolveOrigin(originFlag, cfg)

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for generation")
	}

	promptBuilder := generator.NewPromptBuilder()
	client := generator.NewStoryClient(cfg.GeminiAPIKey, cfg.GenerationModel)

	log.Info().Str("topic", topic).Str("origin", origin).Msg("Generating story")

	story, err := client.Generate(ctx, promptBuilder.GetSystemPrompt(), promptBuilder.BuildUserPrompt(topic, parser.ParseOrigin(origin)))
	if err != nil {
		return fmt.Errorf("generate story: %w", err)
	}
	log.Info().Str("preview", textutil.Truncate(story, 60)).Msg("Story generated")

	segments, err := newEngine().Segment(story, origin)
	if err != nil {
		return fmt.Errorf("segment story: %w", err)
	}

	if save {
		pgPool, neo4jDriver, err := initDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		defer neo4jDriver.Close(ctx)

		segmentStore := store.NewSegmentStore(pgPool)
		if err := segmentStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure segment schema: %w", err)
		}

		contentGraph := graph.NewContentGraph(neo4jDriver)
		if err := contentGraph.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}

		contentID := identifier.UUID()()
		if err := segmentStore.SaveSegments(ctx, contentID, origin, segments); err != nil {
			return fmt.Errorf("store segments: %w", err)
		}
		if err := contentGraph.UpsertContent(ctx, contentID, origin, segments); err != nil {
			log.Warn().Err(err).Str("content_id", contentID).Msg("Failed to update content graph")
		}

		log.Info().Str("content_id", contentID).Int("segments", len(segments)).Msg("Story saved")
	}

	return printJSON(segments)
}

// runSearch handles the `search` command.
func runSearch(query string, topK int) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for search")
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect PostgreSQL: %w", err)
	}
	defer pgPool.Close()

	client := search.NewEmbeddingClient(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	queryVector, err := client.EmbedQuery(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	vectorStore := search.NewVectorStore(pgPool, cfg.EmbeddingDimensions)
	results, err := vectorStore.Search(ctx, queryVector, topK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n   content=%s segment=%s\n", i+1, r.Score, r.Text, r.ContentID, r.SegmentID)
	}

	return nil
}

// segmentText flattens a segment's primary-language value into plain text for
// embedding. Phrase lists are joined with spaces.
func segmentText(seg parser.Segment, lang string) string {
	v, ok := seg.Block[lang]
	if !ok {
		return ""
	}
	if v.IsPhrases() {
		return strings.TrimSpace(strings.Join(v.Phrases(), " "))
	}
	return strings.TrimSpace(v.Text())
}

func printJSON(segments []parser.Segment) error {
	out, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
