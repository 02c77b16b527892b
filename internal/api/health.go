package api

import (
	"net/http"
	"os"
	"time"
)

// healthResponse represents the health check response. Grounded on the
// teacher's internal/api/health.go shape, trimmed to what's meaningful for
// a read-only query server: whether the final index directory it was
// pointed at actually exists.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	IndexDir  string    `json:"index_dir"`
}

// handleHealth reports "ok" only if the configured final index directory
// is present; a missing index is a misconfiguration, not a transient
// failure, so it is surfaced as "degraded" rather than an HTTP error.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if _, err := os.Stat(s.finalDir); err != nil {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now(),
		IndexDir:  s.finalDir,
	})
}
