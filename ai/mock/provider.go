package mock

import "github.com/tessera-insights/retrieval/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	MockEmbedder *MockEmbedder
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider backed by a fresh MockEmbedder.
func NewMockProvider() *MockProvider {
	return &MockProvider{MockEmbedder: NewMockEmbedder()}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
