// Copyright 2025 Tessera Insights
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateSourceDocument validates a SourceDocument according to domain rules.
//
// Validation rules:
//   - URL must not be empty
//   - Content must not be empty or whitespace-only
//
// NOT validated:
//   - Title and Date (optional metadata, carried through as-is)
func ValidateSourceDocument(doc *SourceDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - URL must not be empty
//   - 1 <= ChunkIndex <= TotalChunks
//
// NOT validated (populated by the pipeline):
//   - Vector (checked separately against EmbeddingDim before storage)
//   - Id (0 is replaced by the content-based ID on write)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyContent)
	}

	if record.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyURL)
	}

	if record.ChunkIndex < 1 || record.ChunkIndex > record.TotalChunks {
		return fmt.Errorf("%w: %w: index %d of %d",
			ErrInvalidChunkRecord, ErrInvalidChunkIndex, record.ChunkIndex, record.TotalChunks)
	}

	return nil
}

// ValidateVector checks that a vector has the corpus-wide dimensionality.
func ValidateVector(vector []float32) error {
	if len(vector) != EmbeddingDim {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidVectorDim, len(vector), EmbeddingDim)
	}
	return nil
}
