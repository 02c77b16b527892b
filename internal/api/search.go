package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corpusdex/indexer/internal/query"
)

// searchResult is one ranked match in the JSON response.
type searchResult struct {
	DocID int     `json:"doc_id"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// searchResponse is the body of a successful GET /api/v1/search.
type searchResponse struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
	Results []searchResult `json:"results"`
}

// handleSearch serves GET /api/v1/search?q=<query>&mode=AND|OR, running the
// same boolean query engine cmd/search's CLI uses (spec.md §4.G).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter \"q\"")
		return
	}

	modeParam := r.URL.Query().Get("mode")
	if modeParam == "" {
		modeParam = "AND"
	}
	mode, err := parseMode(modeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := query.Run(q, mode, s.finalDir, s.docMapPath, s.docMappingBackend, s.sqlitePath)
	if err != nil {
		s.logger.Error("query failed", "query", q, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	resp := searchResponse{Query: q, Mode: modeParam, Results: make([]searchResult, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, searchResult{DocID: res.DocID, URL: res.URL, Score: res.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseMode(raw string) (query.Mode, error) {
	switch raw {
	case "AND":
		return query.AND, nil
	case "OR":
		return query.OR, nil
	default:
		return 0, errors.New("mode must be AND or OR")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
