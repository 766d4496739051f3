package api

import (
	"net/http"
	"time"
)

// HealthHandler is the liveness probe used by orchestration. It never calls
// Garmin.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"

	writeJSON(w, s.Logger, http.StatusOK, map[string]string{"status": "ok"})
	s.observe(endpoint, r.Method, http.StatusOK, start)
}
