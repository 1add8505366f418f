package storage

import (
	"context"

	"github.com/tessera-insights/retrieval/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds chunk records similar to the given vector under the
	// backend's cosine metric. Returns records with similarity >=
	// minSimilarity, up to limit results, ordered by similarity score
	// (highest first). An empty store yields an empty slice, not an error.
	// Returns ErrInvalidQuery for an empty vector or a non-positive limit.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing stored chunk records.
type ChunkRepository interface {
	Repository

	// AddChunkRecords writes one or more chunk records.
	// Records with Id=0 get the deterministic content ID for their
	// (URL, ChunkIndex); writes are upserts keyed on that ID, so
	// re-ingesting the same source replaces rows instead of duplicating
	// them. Sets InsertedAt if not already set.
	// Returns the records with IDs and timestamps populated.
	AddChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// GetChunkRecord retrieves a single chunk record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunkRecord(ctx context.Context, id core.ID) (*core.ChunkRecord, error)

	// GetChunkRecords retrieves multiple chunk records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetChunkRecords(ctx context.Context, ids ...core.ID) ([]*core.ChunkRecord, error)

	// GetChunkRecordsBySource retrieves all chunk records of one source
	// document, ordered by chunk index.
	GetChunkRecordsBySource(ctx context.Context, url string) ([]*core.ChunkRecord, error)

	// DeleteChunkRecordsBySource removes every chunk record of one source
	// document. Deleting an unknown source is not an error.
	// Returns the number of records removed.
	DeleteChunkRecordsBySource(ctx context.Context, url string) (int, error)

	// UpdateChunkRecords overwrites existing chunk records, preserving
	// their IDs. Returns ErrNotFound if any record doesn't exist.
	// Used by maintenance jobs (re-embedding), never by ingestion.
	UpdateChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// CountChunkRecords returns the total number of stored chunk records.
	CountChunkRecords(ctx context.Context) (int, error)

	// ForEachChunkRecord iterates over all stored chunk records in key
	// order, calling fn for each. Iteration stops on the first error.
	ForEachChunkRecord(ctx context.Context, fn func(*core.ChunkRecord) error) error
}
