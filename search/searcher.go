package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

const (
	// DefaultMaxHits is the number of chunks returned per query.
	DefaultMaxHits = 3

	// DefaultMinSimilarity admits every chunk with non-negative cosine.
	DefaultMinSimilarity = 0
)

// Searcher provides semantic search over stored chunk records.
type Searcher struct {
	repository    storage.ChunkRepository
	embedder      ai.Embedder
	maxHits       int
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithMaxHits sets the number of results returned per query.
// Default is 3.
func WithMaxHits(maxHits int) Option {
	return func(s *Searcher) error {
		if maxHits < 1 {
			maxHits = 1
		}
		s.maxHits = maxHits
		return nil
	}
}

// WithMinSimilarity sets the minimum cosine similarity for a result.
// Default is 0.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = minSimilarity
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repository storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		repository:    repository,
		embedder:      provider.Embedder(),
		maxHits:       DefaultMaxHits,
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns the chunks most similar to the query, best first.
// An empty corpus yields an empty slice and no error.
func (s *Searcher) Search(ctx context.Context, query string) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor runs Search with stage callbacks for observers.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	results, err := s.repository.FindSimilar(ctx, embedding, s.minSimilarity, s.maxHits)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	monitor.Finish(results)
	return results, nil
}
