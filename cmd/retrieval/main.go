// Copyright 2025 Tessera Insights
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tessera-insights/retrieval"
	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/api"
	"github.com/tessera-insights/retrieval/briefings"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/ingestion"
	"github.com/tessera-insights/retrieval/reembed"
	"github.com/tessera-insights/retrieval/search"
)

// envConfig is populated from the environment (and an optional .env file).
// Flags override individual values per command.
type envConfig struct {
	APIKey         string `env:"RETRIEVAL_OPENAI_API_KEY"`
	EmbeddingHost  string `env:"RETRIEVAL_EMBEDDING_HOST" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel string `env:"RETRIEVAL_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	DBPath         string `env:"RETRIEVAL_DB" envDefault:"./retrieval-db"`
	Addr           string `env:"RETRIEVAL_ADDR" envDefault:":8080"`
	BriefingsPath  string `env:"RETRIEVAL_BRIEFINGS"`
}

func loadConfig() (*envConfig, error) {
	// A missing .env file is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg := &envConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:  "retrieval",
		Usage: "Semantic retrieval over a curated document corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Chunk, embed, and store a batch of source documents",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Path to a JSON array of {url,title,content,date?} documents",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (overrides RETRIEVAL_DB)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding workers",
						Value: 2,
					},
					&cli.BoolFlag{
						Name:  "upsert",
						Usage: "Overwrite rows key by key instead of replacing each source",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the corpus",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (overrides RETRIEVAL_DB)",
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Number of results to return",
						Value: search.DefaultMaxHits,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for a result",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (overrides RETRIEVAL_DB)",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides RETRIEVAL_ADDR)",
					},
					&cli.StringFlag{
						Name:  "briefings",
						Usage: "Path to the curated briefings JSON (overrides RETRIEVAL_BRIEFINGS)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate every stored embedding with the configured model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (overrides RETRIEVAL_DB)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase resolves configuration and opens the database.
// Fails before any work when the API key is missing.
func openDatabase(c *cli.Context) (*retrieval.Database, *envConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if c.String("db") != "" {
		cfg.DBPath = c.String("db")
	}

	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("RETRIEVAL_OPENAI_API_KEY is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.EmbeddingHost),
		ai.WithModel(cfg.EmbeddingModel),
		ai.WithAPIKey(cfg.APIKey),
	)

	db, err := retrieval.NewDatabase(cfg.DBPath, retrieval.WithAIConfig(aiConfig))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return db, cfg, nil
}

func ingestCommand(c *cli.Context) error {
	docs, err := loadDocuments(c.String("source"))
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{ingestion.WithPoolSize(c.Int("pool-size"))}
	if c.Bool("upsert") {
		opts = append(opts, ingestion.WithDuplicatePolicy(ingestion.Upsert))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	summary, err := pipeline.Ingest(c.Context, docs)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d documents: %d/%d chunks stored\n",
		summary.Documents, summary.Succeeded, summary.Processed)
	for _, failure := range summary.Failures {
		fmt.Printf("  failed: %s chunk %d: %v\n", failure.URL, failure.ChunkIndex, failure.Err)
	}

	if summary.Failed > 0 && summary.Succeeded == 0 {
		return fmt.Errorf("ingestion stored nothing (%d failures)", summary.Failed)
	}
	return nil
}

func loadDocuments(path string) ([]core.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}

	var docs []core.SourceDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing source file %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("source file %s holds no documents", path)
	}
	return docs, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: retrieval search <query>")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(
		search.WithMaxHits(c.Int("max-hits")),
		search.WithMinSimilarity(float32(c.Float64("min-similarity"))),
	)
	if err != nil {
		return err
	}

	results, err := searcher.Search(c.Context, query)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		record := hit.Record
		fmt.Printf("%d: [%0.3f] %s (chunk %d/%d)\n   %s\n",
			i+1, hit.Score, record.URL, record.ChunkIndex, record.TotalChunks,
			record.Content)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.String("addr") != "" {
		cfg.Addr = c.String("addr")
	}
	if c.String("briefings") != "" {
		cfg.BriefingsPath = c.String("briefings")
	}

	var briefingSet []core.Briefing
	if cfg.BriefingsPath != "" {
		briefingSet, err = briefings.LoadFile(cfg.BriefingsPath)
		if err != nil {
			return err
		}
		slog.Info("loaded briefings", "count", len(briefingSet), "path", cfg.BriefingsPath)
	}

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	server, err := api.NewServer(searcher, db.ChunkRepository(),
		api.WithAddr(cfg.Addr),
		api.WithBriefings(briefingSet),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

func reembedCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	return db.NewReembedder(config, os.Stderr).Run(c.Context)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
