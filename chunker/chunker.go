package chunker

import (
	"strings"

	"github.com/tessera-insights/retrieval/core"
)

const (
	// DefaultChunkSize keeps fragments safely under the embedding model's
	// input ceiling.
	DefaultChunkSize = 800

	// DefaultOverlap is the context shared between consecutive fragments.
	DefaultOverlap = 150
)

// Chunker splits text into overlapping fragments of at most a fixed size.
type Chunker struct {
	size    int // maximum fragment length, in runes
	overlap int // runes of context shared between consecutive fragments
}

// New creates a Chunker.
// size must be positive; overlap must be non-negative and smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrInvalidOverlap
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split splits text into an ordered sequence of chunks.
//
// The text is scanned in windows of at most the configured size. When a
// window does not reach the end of the text, its end is snapped to the last
// sentence boundary (". ") found in the second half of the window; if none
// exists, the raw window is used. Each fragment is trimmed, and the scan
// advances by the fragment's pre-trim length minus the overlap, so
// consecutive chunks share overlap runes of context.
//
// For non-empty input the result is non-empty; text no longer than the
// chunk size yields exactly one chunk. Every chunk carries its 1-based
// Index and the final TotalChunks of its document.
func (c *Chunker) Split(text string) ([]core.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	runes := []rune(text)
	var fragments []string

	start := 0
	for start < len(runes) {
		end := start + c.size
		last := end >= len(runes)
		if last {
			end = len(runes)
		} else if cut := lastSentenceEnd(runes[start:end]); cut > c.size/2 {
			end = start + cut
		}

		if fragment := strings.TrimSpace(string(runes[start:end])); fragment != "" {
			fragments = append(fragments, fragment)
		}
		if last {
			break
		}

		// Advance by the window's length minus the overlap; the floor of 1
		// guards against a pathological overlap eating the whole window.
		advance := end - start - c.overlap
		if advance < 1 {
			advance = 1
		}
		start += advance
	}

	chunks := make([]core.Chunk, len(fragments))
	for i, fragment := range fragments {
		chunks[i] = core.Chunk{
			Text:        fragment,
			Index:       i + 1,
			TotalChunks: len(fragments),
		}
	}
	return chunks, nil
}

// lastSentenceEnd returns the cut position just after the last ". " in the
// window, or -1 if the window contains no sentence boundary.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		if window[i] == '.' && window[i+1] == ' ' {
			return i + 1
		}
	}
	return -1
}
