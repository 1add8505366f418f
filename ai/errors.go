package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// EmbeddingError reports a failed or malformed embedding-provider response:
// transport errors, rate limits, and wrong-dimension results all surface as
// this type. Position context (document, chunk index) is attached by the
// caller, not here.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsEmbeddingError reports whether err is, or wraps, an EmbeddingError.
func IsEmbeddingError(err error) bool {
	var embErr *EmbeddingError
	return errors.As(err, &embErr)
}
