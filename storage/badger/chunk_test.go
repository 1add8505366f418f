package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

func testRecord(url string, index, total int, content string) *core.ChunkRecord {
	return &core.ChunkRecord{
		Content:     content,
		URL:         url,
		Title:       "Test Article",
		Date:        "2026-08-01",
		ChunkIndex:  index,
		TotalChunks: total,
	}
}

func TestChunkRecordBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	record := testRecord("https://example.com/a", 1, 1, "Hello, world!")

	added, err := repo.AddChunkRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add chunk record: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].Id != core.IDFromChunk("https://example.com/a", 1) {
		t.Fatal("Expected content-derived ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := repo.GetChunkRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chunk record: %v", err)
	}

	if retrieved.Content != "Hello, world!" {
		t.Fatalf("Expected 'Hello, world!', got '%s'", retrieved.Content)
	}
}

func TestGetChunkRecord_NotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	_, err = repo.GetChunkRecord(context.Background(), core.ID(12345))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddChunkRecords_UpsertBySource(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	url := "https://example.com/post"

	// First ingestion
	_, err = repo.AddChunkRecords(ctx,
		testRecord(url, 1, 2, "version one, chunk one"),
		testRecord(url, 2, 2, "version one, chunk two"),
	)
	if err != nil {
		t.Fatalf("Failed to add records: %v", err)
	}

	// Re-ingestion of the same source replaces rows instead of duplicating
	_, err = repo.AddChunkRecords(ctx,
		testRecord(url, 1, 2, "version two, chunk one"),
		testRecord(url, 2, 2, "version two, chunk two"),
	)
	if err != nil {
		t.Fatalf("Failed to re-add records: %v", err)
	}

	count, err := repo.CountChunkRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 records after re-ingestion, got %d", count)
	}

	bySource, err := repo.GetChunkRecordsBySource(ctx, url)
	if err != nil {
		t.Fatalf("Failed to get records by source: %v", err)
	}
	if len(bySource) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(bySource))
	}
	if bySource[0].Content != "version two, chunk one" {
		t.Errorf("Expected replaced content, got '%s'", bySource[0].Content)
	}
}

func TestGetChunkRecordsBySource_Ordering(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	url := "https://example.com/long-read"

	// Add out of order
	_, err = repo.AddChunkRecords(ctx,
		testRecord(url, 3, 3, "third"),
		testRecord(url, 1, 3, "first"),
		testRecord(url, 2, 3, "second"),
	)
	if err != nil {
		t.Fatalf("Failed to add records: %v", err)
	}

	results, err := repo.GetChunkRecordsBySource(ctx, url)
	if err != nil {
		t.Fatalf("Failed to get records by source: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Content != want {
			t.Errorf("Position %d: expected '%s', got '%s'", i, want, results[i].Content)
		}
	}
}

func TestGetChunkRecordsBySource_NoPrefixBleed(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	// One URL is a prefix of the other; scans must not cross over
	_, err = repo.AddChunkRecords(ctx,
		testRecord("https://example.com/post", 1, 1, "short"),
		testRecord("https://example.com/post-script", 1, 1, "long"),
	)
	if err != nil {
		t.Fatalf("Failed to add records: %v", err)
	}

	results, err := repo.GetChunkRecordsBySource(ctx, "https://example.com/post")
	if err != nil {
		t.Fatalf("Failed to get records by source: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
	if results[0].Content != "short" {
		t.Errorf("Expected 'short', got '%s'", results[0].Content)
	}
}

func TestDeleteChunkRecordsBySource(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = repo.AddChunkRecords(ctx,
		testRecord("https://example.com/keep", 1, 1, "keep me"),
		testRecord("https://example.com/drop", 1, 2, "drop one"),
		testRecord("https://example.com/drop", 2, 2, "drop two"),
	)
	if err != nil {
		t.Fatalf("Failed to add records: %v", err)
	}

	deleted, err := repo.DeleteChunkRecordsBySource(ctx, "https://example.com/drop")
	if err != nil {
		t.Fatalf("Failed to delete records: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Expected 2 deleted, got %d", deleted)
	}

	count, err := repo.CountChunkRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 record left, got %d", count)
	}

	// Deleting an unknown source is not an error
	deleted, err = repo.DeleteChunkRecordsBySource(ctx, "https://example.com/missing")
	if err != nil {
		t.Fatalf("Expected no error for unknown source, got %v", err)
	}
	if deleted != 0 {
		t.Fatalf("Expected 0 deleted, got %d", deleted)
	}
}

func TestUpdateChunkRecords(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := repo.AddChunkRecords(ctx, testRecord("https://example.com/a", 1, 1, "original"))
	if err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}

	updated := *added[0]
	updated.Vector = make([]float32, core.EmbeddingDim)
	updated.Vector[0] = 0.5

	_, err = repo.UpdateChunkRecords(ctx, &updated)
	if err != nil {
		t.Fatalf("Failed to update record: %v", err)
	}

	retrieved, err := repo.GetChunkRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if len(retrieved.Vector) != core.EmbeddingDim {
		t.Fatalf("Expected vector of dim %d, got %d", core.EmbeddingDim, len(retrieved.Vector))
	}

	// Updating a missing record fails
	missing := testRecord("https://example.com/missing", 1, 1, "nope")
	missing.Id = core.ID(999)
	_, err = repo.UpdateChunkRecords(ctx, missing)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestForEachChunkRecord(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = repo.AddChunkRecords(ctx,
		testRecord("https://example.com/a", 1, 1, "one"),
		testRecord("https://example.com/b", 1, 1, "two"),
	)
	if err != nil {
		t.Fatalf("Failed to add records: %v", err)
	}

	seen := 0
	err = repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if seen != 2 {
		t.Fatalf("Expected to visit 2 records, got %d", seen)
	}

	// Iteration stops on the first callback error
	stop := errors.New("stop")
	seen = 0
	err = repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
		seen++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Expected stop error, got %v", err)
	}
	if seen != 1 {
		t.Fatalf("Expected 1 visit before stopping, got %d", seen)
	}
}
