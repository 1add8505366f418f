package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"DEBUG", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(&cli.App{}, set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenDatabase(t *testing.T) {
	newContext := func() *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("db", "", "")
		return cli.NewContext(&cli.App{}, set, nil)
	}

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("RETRIEVAL_OPENAI_API_KEY", "")
		t.Setenv("RETRIEVAL_DB", filepath.Join(t.TempDir(), "db"))

		db, _, err := openDatabase(newContext())
		require.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "RETRIEVAL_OPENAI_API_KEY")
	})

	t.Run("with API key", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "db")
		t.Setenv("RETRIEVAL_OPENAI_API_KEY", "test-key")
		t.Setenv("RETRIEVAL_DB", dbPath)

		db, cfg, err := openDatabase(newContext())
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.Equal(t, dbPath, cfg.DBPath)
	})
}

func TestLoadDocuments(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docs.json")
		payload := `[
			{"url":"https://example.com/a","title":"A","content":"Text of A.","date":"2026-08-01"},
			{"url":"https://example.com/b","title":"B","content":"Text of B."}
		]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

		docs, err := loadDocuments(path)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "https://example.com/a", docs[0].URL)
		assert.Equal(t, "Text of B.", docs[1].Content)
		assert.Empty(t, docs[1].Date)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadDocuments(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0644))
		_, err := loadDocuments(path)
		assert.Error(t, err)
	})

	t.Run("empty array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))
		_, err := loadDocuments(path)
		assert.Error(t, err)
	})
}
