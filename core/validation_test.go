package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSourceDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *SourceDocument
		wantErr error
	}{
		{
			name: "valid document",
			doc: &SourceDocument{
				URL:     "https://example.org/briefings/data-localization",
				Title:   "Data localization in the GCC",
				Content: "Gulf states are tightening data residency requirements.",
			},
			wantErr: nil,
		},
		{
			name: "valid document without title or date",
			doc: &SourceDocument{
				URL:     "https://example.org/notes/1",
				Content: "Short note.",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing url",
			doc: &SourceDocument{
				Content: "orphaned text",
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "empty content",
			doc: &SourceDocument{
				URL: "https://example.org/empty",
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "whitespace-only content",
			doc: &SourceDocument{
				URL:     "https://example.org/blank",
				Content: "   \n\t  ",
			},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSourceDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSourceDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunkRecord(t *testing.T) {
	valid := func() *ChunkRecord {
		return &ChunkRecord{
			Content:     "fragment",
			URL:         "https://example.org/doc",
			ChunkIndex:  1,
			TotalChunks: 3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ChunkRecord)
		wantErr error
	}{
		{"valid record", func(r *ChunkRecord) {}, nil},
		{"empty content", func(r *ChunkRecord) { r.Content = "" }, ErrEmptyContent},
		{"empty url", func(r *ChunkRecord) { r.URL = "" }, ErrEmptyURL},
		{"zero index", func(r *ChunkRecord) { r.ChunkIndex = 0 }, ErrInvalidChunkIndex},
		{"index past total", func(r *ChunkRecord) { r.ChunkIndex = 4 }, ErrInvalidChunkIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(record)
			err := ValidateChunkRecord(record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunkRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunkRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("nil record", func(t *testing.T) {
		if err := ValidateChunkRecord(nil); !errors.Is(err, ErrInvalidChunkRecord) {
			t.Errorf("ValidateChunkRecord(nil) error = %v, want %v", err, ErrInvalidChunkRecord)
		}
	})
}

func TestValidateVector(t *testing.T) {
	if err := ValidateVector(make([]float32, EmbeddingDim)); err != nil {
		t.Errorf("ValidateVector() rejected a %d-dim vector: %v", EmbeddingDim, err)
	}

	err := ValidateVector(make([]float32, 384))
	if !errors.Is(err, ErrInvalidVectorDim) {
		t.Errorf("ValidateVector() error = %v, want %v", err, ErrInvalidVectorDim)
	}
	if err != nil && !strings.Contains(err.Error(), "384") {
		t.Errorf("ValidateVector() error should name the offending length: %v", err)
	}
}
