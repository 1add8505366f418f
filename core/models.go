package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// EmbeddingDim is the fixed dimensionality of every embedding vector in the
// corpus. A query vector and a stored vector must share it to be comparable.
const EmbeddingDim = 1536

// ID is a unique identifier for stored chunk records.
// It is generated using content-based hashing so that re-ingesting the same
// source produces the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromChunk generates the deterministic record ID for a chunk of a source
// document, keyed on (url, chunkIndex). Writes keyed on this ID make
// re-ingestion an upsert rather than an append.
func IDFromChunk(url string, chunkIndex int) ID {
	return IDFromContent(fmt.Sprintf("%s#%d", url, chunkIndex))
}

// SourceDocument is a logical ingestion input: one long-form document to be
// split, embedded and stored. It exists only for the duration of a batch run.
type SourceDocument struct {
	URL     string `json:"url"`            // stable identifier for the document
	Title   string `json:"title"`
	Content string `json:"content"`        // full text
	Date    string `json:"date,omitempty"` // optional publication date, ISO 8601
}

// Chunk is a contiguous, overlapping slice of a source document's content,
// sized to fit the embedding model's input limit.
type Chunk struct {
	Text        string // trimmed fragment
	Index       int    // 1-based position within the parent document
	TotalChunks int    // count of fragments produced from the parent
}

// ChunkRecord is the persisted unit: one embedded chunk plus the metadata
// needed to attribute a search hit back to its source document.
// Records are never updated in place; re-ingestion replaces them by ID.
type ChunkRecord struct {
	Id          ID
	Content     string // chunk text
	URL         string
	Title       string
	Date        string
	ChunkIndex  int // 1-based
	TotalChunks int
	Vector      []float32 // embedding, EmbeddingDim elements
	InsertedAt  time.Time
}

// SearchResult is a query-time match: a stored record and its similarity to
// the query vector, in the metric's range (higher = more relevant).
type SearchResult struct {
	Record *ChunkRecord
	Score  float32
}

// Briefing is one entry of the curated briefing set served by the topic
// filter API. The set is supplied externally; this package only defines its
// shape.
type Briefing struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Date    string   `json:"date"`
	URL     string   `json:"url"`
	Topics  []string `json:"topics"`
}
