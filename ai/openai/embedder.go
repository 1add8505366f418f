package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create an OpenAI client configured for embeddings.
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		model:    config.EmbeddingModel,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, &ai.EmbeddingError{Model: e.model, Err: err}
	}

	if err := e.checkDimension(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, &ai.EmbeddingError{Model: e.model, Err: err}
	}

	if len(vectors) != len(texts) {
		return nil, &ai.EmbeddingError{
			Model: e.model,
			Err:   fmt.Errorf("embedding result mismatch: expected %d, received %d", len(texts), len(vectors)),
		}
	}

	for _, vector := range vectors {
		if err := e.checkDimension(vector); err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

// checkDimension rejects malformed provider responses before they reach the
// store; the corpus-wide dimensionality is fixed.
func (e *Embedder) checkDimension(vector []float32) error {
	if err := core.ValidateVector(vector); err != nil {
		e.logger.Error("embedder returned malformed vector", "len", len(vector), "err", err)
		return &ai.EmbeddingError{Model: e.model, Err: err}
	}
	return nil
}
