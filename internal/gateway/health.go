package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/flemzord/teamgate/internal/provider"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string           `json:"status"` // "ok" or "degraded"
	Provider *provider.Status `json:"provider,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 while the provider session is connected, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if rep, ok := g.prov.(provider.Reporter); ok {
			st := rep.Status()
			resp.Provider = &st
			if !st.Connected {
				resp.Status = "degraded"
			}
		} else if g.prov == nil {
			resp.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
