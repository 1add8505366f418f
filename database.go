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


package retrieval

import (
	"io"
	"log/slog"

	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/ai/openai"
	"github.com/tessera-insights/retrieval/ingestion"
	"github.com/tessera-insights/retrieval/reembed"
	"github.com/tessera-insights/retrieval/search"
	"github.com/tessera-insights/retrieval/storage"
	"github.com/tessera-insights/retrieval/storage/badger"
)

// Database bundles the storage backend and the embedding provider behind
// one handle and hands out the pipeline, searcher, and reembedder wired
// against them.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.Provider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built embedding provider, bypassing the
// OpenAI client construction. Used by tests and local tooling.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens the chunk store at filePath and connects the
// embedding provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing embedding provider", "err", err)
	}

	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chunkRepo, db.provider, opts...)
}

// NewReembedder builds a reembedder writing progress to the given writer.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.chunkRepo, db.provider.Embedder(), config, progress)
}
