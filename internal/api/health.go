package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Phase   string `json:"phase"`
}

// HealthHandler reports liveness along with the SDK bootstrap phase.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "health", "GET", time.Now(), http.StatusOK, healthResponse{
		Status:  "ok",
		Service: s.Config.ServiceName,
		Phase:   s.Bootstrap.Phase().String(),
	})
}
