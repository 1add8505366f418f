package mock

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessera-insights/retrieval/core"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	require.Len(t, first, core.EmbeddingDim)

	second, err := embedder.EmbedText(ctx, "same input")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := embedder.EmbedText(ctx, "different input")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	assert.Equal(t, 3, embedder.CallCount())
}

func TestMockEmbedder_ConcurrentCallCount(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	const workers = 16
	const callsPerWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < callsPerWorker; i++ {
				_, err := embedder.EmbedText(ctx, fmt.Sprintf("worker %d call %d", w, i))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*callsPerWorker, embedder.CallCount())
}

func TestMockEmbedder_Reset(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("injected failure")
	}

	_, err := embedder.EmbedText(context.Background(), "text")
	require.Error(t, err)
	require.Equal(t, 1, embedder.CallCount())

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())

	vector, err := embedder.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vector, core.EmbeddingDim)
}
