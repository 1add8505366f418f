package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/core"
)

// embeddingHandler answers OpenAI-compatible /v1/embeddings requests with
// one vector of the given dimension per input.
func embeddingHandler(t *testing.T, dim int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Object string  `json:"object"`
			Data   []datum `json:"data"`
			Model  string  `json:"model"`
		}{Object: "list", Model: req.Model}

		for i := range req.Input {
			vector := make([]float32, dim)
			for j := range vector {
				vector[j] = float32(i+1) / float32(j+1)
			}
			resp.Data = append(resp.Data, datum{Object: "embedding", Index: i, Embedding: vector})
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func stubEmbedder(t *testing.T, handler http.Handler) ai.Embedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := ai.NewConfig(
		ai.WithHost(server.URL),
		ai.WithModel("test-embedding"),
		ai.WithAPIKey("test-key"),
	)
	embedder, err := NewEmbedder(config)
	require.NoError(t, err)
	return embedder
}

func TestEmbedder_EmbedText(t *testing.T) {
	embedder := stubEmbedder(t, embeddingHandler(t, core.EmbeddingDim))

	vector, err := embedder.EmbedText(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vector, core.EmbeddingDim)
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	embedder := stubEmbedder(t, embeddingHandler(t, core.EmbeddingDim))

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, vector := range vectors {
		assert.Len(t, vector, core.EmbeddingDim)
	}
}

func TestEmbedder_WrongDimension(t *testing.T) {
	embedder := stubEmbedder(t, embeddingHandler(t, 4))

	t.Run("single text", func(t *testing.T) {
		vector, err := embedder.EmbedText(context.Background(), "some text")
		require.Error(t, err)
		assert.Nil(t, vector)
		assert.True(t, ai.IsEmbeddingError(err))
	})

	t.Run("batch", func(t *testing.T) {
		vectors, err := embedder.EmbedTexts(context.Background(), []string{"first", "second"})
		require.Error(t, err)
		assert.Nil(t, vectors)
		assert.True(t, ai.IsEmbeddingError(err))
	})
}

func TestEmbedder_ProviderFailure(t *testing.T) {
	embedder := stubEmbedder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"service unavailable"}}`, http.StatusInternalServerError)
	}))

	t.Run("single text", func(t *testing.T) {
		_, err := embedder.EmbedText(context.Background(), "some text")
		require.Error(t, err)
		assert.True(t, ai.IsEmbeddingError(err))
	})

	t.Run("batch", func(t *testing.T) {
		_, err := embedder.EmbedTexts(context.Background(), []string{"first", "second"})
		require.Error(t, err)
		assert.True(t, ai.IsEmbeddingError(err))
	})
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	_, err := NewEmbedder(ai.NewConfig(ai.WithHost(""), ai.WithAPIKey("test-key")))
	assert.Error(t, err)
}
