package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flemzord/teamgate/internal/provider"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime   time.Duration    `json:"uptime_seconds"`
	Metrics  MetricsSnapshot  `json:"metrics"`
	Provider *provider.Status `json:"provider,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:  time.Since(g.startedAt).Truncate(time.Second),
			Metrics: g.metrics.Snapshot(),
		}

		if rep, ok := g.prov.(provider.Reporter); ok {
			st := rep.Status()
			resp.Provider = &st
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
