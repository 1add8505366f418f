package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tessera-insights/retrieval/ai"
	"github.com/tessera-insights/retrieval/briefings"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/search"
)

type searchRequest struct {
	Query string `json:"query"`
}

type resultMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
}

type searchResult struct {
	// IDs are 64-bit; serialized as strings so JS clients keep precision.
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Similarity float32        `json:"similarity"`
	Metadata   resultMetadata `json:"metadata"`
}

type searchResponse struct {
	Success bool           `json:"success"`
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type briefingsResponse struct {
	Count     int             `json:"count"`
	Briefings []core.Briefing `json:"briefings"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid request body"})
		return
	}

	results, err := s.searcher.Search(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyQuery):
			writeJSON(w, http.StatusBadRequest, failureResponse{Error: "query is required"})
		case ai.IsEmbeddingError(err):
			s.logger.Error("query embedding failed", "err", err)
			writeJSON(w, http.StatusBadGateway, failureResponse{Error: "search failed"})
		default:
			s.logger.Error("search failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "search failed"})
		}
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, result := range results {
		record := result.Record
		out = append(out, searchResult{
			ID:         strconv.FormatUint(uint64(record.Id), 10),
			Content:    record.Content,
			Similarity: result.Score,
			Metadata: resultMetadata{
				URL:         record.URL,
				Title:       record.Title,
				Date:        record.Date,
				ChunkIndex:  record.ChunkIndex,
				TotalChunks: record.TotalChunks,
			},
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Query:   req.Query,
		Results: out,
	})
}

func (s *Server) handleBriefings(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	matched := briefings.FilterByTopic(s.briefings, topic)
	if matched == nil {
		matched = []core.Briefing{}
	}

	writeJSON(w, http.StatusOK, briefingsResponse{
		Count:     len(matched),
		Briefings: matched,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.repository.CountChunkRecords(r.Context())
	if err != nil {
		s.logger.Error("health check failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "storage unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Records: count})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
