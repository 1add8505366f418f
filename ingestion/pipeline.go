package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/chunker"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

const (
	defaultPoolSize    = 2
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// DuplicatePolicy controls what happens when a source document is
// ingested again.
type DuplicatePolicy int

const (
	// ReplaceSource deletes the document's existing chunk rows before
	// writing the new ones. A shrinking document leaves no stale tail.
	ReplaceSource DuplicatePolicy = iota

	// Upsert overwrites rows key by key and leaves any rows the new
	// version no longer produces.
	Upsert
)

// ChunkFailure records one chunk that could not be embedded or stored.
// ChunkIndex 0 means the document failed before chunking.
type ChunkFailure struct {
	URL        string
	ChunkIndex int
	Err        error
}

// Summary aggregates the outcome of one Ingest call.
type Summary struct {
	Documents int // documents in the batch
	Processed int // chunks attempted
	Succeeded int // chunks embedded and stored
	Failed    int // chunks or documents that failed
	Failures  []ChunkFailure
}

// Pipeline orchestrates the ingestion of source documents.
// It splits documents into chunks and embeds and stores them concurrently.
type Pipeline struct {
	repository storage.ChunkRepository
	embedder   ai.Embedder
	splitter   *chunker.Chunker
	pool       *ants.Pool
	policy     DuplicatePolicy

	maxAttempts int
	baseDelay   time.Duration

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent chunk processing.
// Default is 2, sized for embedding endpoints with per-client rate limits.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithChunking overrides the chunk window size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		splitter, err := chunker.New(size, overlap)
		if err != nil {
			return err
		}
		p.splitter = splitter
		return nil
	}
}

// WithDuplicatePolicy sets the re-ingestion policy.
// Default is ReplaceSource.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(p *Pipeline) error {
		p.policy = policy
		return nil
	}
}

// WithRetry configures the embedding retry behavior.
// Defaults are 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		repository:  repository,
		embedder:    provider.Embedder(),
		splitter:    splitter,
		pool:        pool,
		policy:      ReplaceSource,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest splits, embeds, and stores a batch of source documents.
// It returns after every submitted chunk has finished. Chunk and document
// failures are recorded in the Summary; the returned error is non-nil only
// when the batch as a whole could not run (context cancellation, pool
// shutdown).
func (p *Pipeline) Ingest(ctx context.Context, docs []core.SourceDocument) (*Summary, error) {
	summary := &Summary{Documents: len(docs)}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	fail := func(url string, chunkIndex int, err error) {
		mu.Lock()
		summary.Failed++
		summary.Failures = append(summary.Failures, ChunkFailure{
			URL:        url,
			ChunkIndex: chunkIndex,
			Err:        err,
		})
		mu.Unlock()
		p.logger.Error("chunk failed",
			"url", url, "chunkIndex", chunkIndex, "err", err)
	}

	for i := range docs {
		doc := docs[i]

		if err := ctx.Err(); err != nil {
			wg.Wait()
			return summary, err
		}

		if err := core.ValidateSourceDocument(&doc); err != nil {
			fail(doc.URL, 0, err)
			continue
		}

		chunks, err := p.splitter.Split(doc.Content)
		if err != nil {
			fail(doc.URL, 0, err)
			continue
		}

		if p.policy == ReplaceSource {
			if _, err := p.repository.DeleteChunkRecordsBySource(ctx, doc.URL); err != nil {
				fail(doc.URL, 0, fmt.Errorf("replacing source: %w", err))
				continue
			}
		}

		p.logger.Info("ingesting document",
			"url", doc.URL, "chunks", len(chunks))

		for _, chunk := range chunks {
			record := &core.ChunkRecord{
				Content:     chunk.Text,
				URL:         doc.URL,
				Title:       doc.Title,
				Date:        doc.Date,
				ChunkIndex:  chunk.Index,
				TotalChunks: chunk.TotalChunks,
			}

			mu.Lock()
			summary.Processed++
			mu.Unlock()

			wg.Add(1)
			submitErr := p.pool.Submit(func() {
				defer wg.Done()
				if err := p.processChunk(ctx, record); err != nil {
					fail(record.URL, record.ChunkIndex, err)
					return
				}
				mu.Lock()
				summary.Succeeded++
				mu.Unlock()
			})
			if submitErr != nil {
				wg.Done()
				wg.Wait()
				return summary, submitErr
			}
		}
	}

	wg.Wait()
	return summary, nil
}

// processChunk embeds one chunk with retry and writes it to storage.
func (p *Pipeline) processChunk(ctx context.Context, record *core.ChunkRecord) error {
	err := ai.RetryWithBackoff(ctx, func() error {
		vector, embedErr := p.embedder.EmbedText(ctx, record.Content)
		if embedErr != nil {
			return embedErr
		}
		record.Vector = vector
		return nil
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return err
	}

	if _, err := p.repository.AddChunkRecords(ctx, record); err != nil {
		return fmt.Errorf("storing chunk: %w", err)
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
