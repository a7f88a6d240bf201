package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/trainer/pkg/metrics"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the backing ledger is reachable.
type Pinger interface {
	Ready(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	ledger Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(p Pinger) *HealthHandler {
	return &HealthHandler{ledger: p}
}

type healthResponse struct {
	Status string `json:"status"`
	Ledger string `json:"ledger"`
}

// HandleHealth handles GET /healthz requests. It answers 503 when the ledger
// cannot be reached.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.ledger.Ready(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", errors.Join(ErrNotReady, err))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Ledger: "up"})
}

// NewMetricsHandler serves the custom metrics registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
