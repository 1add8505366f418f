package chunker

import "errors"

var (
	// ErrEmptyText is returned when the input text is empty or whitespace-only.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap is returned when the overlap is negative or not
	// smaller than the chunk size.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than chunk size")
)
