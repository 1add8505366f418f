package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

// BatchProcessor handles embedding generation for batches of chunk records.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of records and updates them
// in place. Vectors are stored as returned; the similarity metric
// normalizes at query time.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Content
	}

	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	for i := range records {
		records[i].Vector = embeddings[i]
	}

	_, err = bp.repo.UpdateChunkRecords(ctx, records...)
	if err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}

	return nil
}
