// Package reembed regenerates the embedding vectors of stored chunk
// records, typically after switching embedding models.
//
// Records are processed in batches with progress reporting and retry with
// exponential backoff around the embedding calls.
package reembed
