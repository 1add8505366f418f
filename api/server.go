package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/search"
	"github.com/tessera-insights/retrieval/storage"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

// Server serves the retrieval HTTP API.
type Server struct {
	searcher   *search.Searcher
	repository storage.ChunkRepository
	briefings  []core.Briefing
	addr       string
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithAddr sets the listen address.
// Default is ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) error {
		if addr != "" {
			s.addr = addr
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "api")
		return nil
	}
}

// WithBriefings sets the curated briefing set served by /briefings.
func WithBriefings(records []core.Briefing) Option {
	return func(s *Server) error {
		s.briefings = records
		return nil
	}
}

// NewServer creates the HTTP server.
func NewServer(
	searcher *search.Searcher,
	repository storage.ChunkRepository,
	opts ...Option,
) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if repository == nil {
		return nil, ErrChunkRepositoryRequired
	}

	s := &Server{
		searcher:   searcher,
		repository: repository,
		addr:       defaultAddr,
		logger:     slog.Default().With("component", "api"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /briefings", s.handleBriefings)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestLogging(withCORS(mux))
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
