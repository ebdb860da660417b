package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// HealthCheckTimeout caps the store probe so a wedged database cannot
// hang readiness checks.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler serves the unauthenticated liveness and readiness probes.
type HealthHandler struct {
	store     store.Store
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{
		store:     s,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health.
// Succeeds whenever the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	WriteJSONOK(w, map[string]any{
		"status":     "healthy",
		"service":    "safesplit",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime_sec": int64(uptime.Seconds()),
	})
}

// Readiness handles GET /health/ready.
// Probes the metadata store and reports 503 when it is unreachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	if err := h.store.Healthcheck(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	WriteJSONOK(w, map[string]any{"status": "ready"})
}
