package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
)

// Pinger is anything that can report its own liveness against a context
// deadline. The Postgres connection and the Redis client both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain health-check function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// readinessTimeout bounds the whole dependency sweep; a hung dependency
// must not hang the probe.
const readinessTimeout = 5 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks map[string]Pinger
	logger logging.Logger
}

// NewHealthHandler creates a HealthHandler with named dependency checks.
// Map values may be nil for dependencies disabled in this deployment.
func NewHealthHandler(checks map[string]Pinger, logger logging.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Liveness handles GET /healthz. It only proves the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Readiness handles GET /readyz. Any failing dependency turns the probe
// 503 so the load balancer drains this instance.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, check := range h.checks {
		if check == nil {
			resp.Checks[name] = "disabled"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed",
				logging.String("check", name),
				logging.Err(err))
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

//Personal.AI order the ending
