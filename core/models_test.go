package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestIDFromChunk(t *testing.T) {
	// Same (url, index) always maps to the same record ID.
	if IDFromChunk("https://example.org/briefings/gcc", 1) != IDFromChunk("https://example.org/briefings/gcc", 1) {
		t.Error("IDFromChunk() not deterministic for identical inputs")
	}

	// Different index or different URL must not collide.
	if IDFromChunk("https://example.org/briefings/gcc", 1) == IDFromChunk("https://example.org/briefings/gcc", 2) {
		t.Error("IDFromChunk() collided across chunk indexes")
	}
	if IDFromChunk("https://example.org/a", 1) == IDFromChunk("https://example.org/b", 1) {
		t.Error("IDFromChunk() collided across URLs")
	}
}
