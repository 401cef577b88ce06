package api

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status      string            `json:"status" example:"ok"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment" example:"development"`
	Version     string            `json:"version" example:"1.0.0"`
	Services    map[string]string `json:"services"`
}

// @Summary      Health check
// @Description  Liveness plus the reachability of backing services. Always 200; a failing dependency turns the status to "degraded".
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: s.config.App.Env,
		Version:     s.config.App.Version,
		Services:    make(map[string]string, len(s.checks)),
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.Warn(ctx, "health check failed", "service", name, "error", err)
			resp.Services[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Services[name] = "healthy"
	}

	writeJSON(w, http.StatusOK, resp)
}
