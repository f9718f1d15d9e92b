package gateway

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Uptime string `json:"uptime"`
	Mode   string `json:"mode"` // "polling" or "webhook"
}

// HealthReporter serves the health endpoint. Components flag degradation
// via SetDegraded; the endpoint then returns 503 so platform health checks
// (e.g. Render's) restart the service.
type HealthReporter struct {
	started  time.Time
	mode     string
	degraded atomic.Bool
}

// NewHealthReporter creates a HealthReporter for the given run mode.
func NewHealthReporter(mode string) *HealthReporter {
	return &HealthReporter{
		started: time.Now(),
		mode:    mode,
	}
}

// SetDegraded flips the reported health state.
func (h *HealthReporter) SetDegraded(degraded bool) {
	h.degraded.Store(degraded)
}

// ServeHTTP implements GET /health.
func (h *HealthReporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
		Mode:   h.mode,
	}

	w.Header().Set("Content-Type", "application/json")
	if h.degraded.Load() {
		resp.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
