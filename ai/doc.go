// Package ai defines the embedding-service abstraction used by the
// retrieval pipeline.
//
// The Embedder interface is the only network-dependent operation in the
// core: one outbound call per invocation, no caching, no normalization.
// Provider failures surface as *EmbeddingError; callers attach position
// context (document, chunk index) themselves.
package ai
