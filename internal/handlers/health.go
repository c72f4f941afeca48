package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger verifies a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker serves liveness and readiness endpoints for a consumer
// service.
type HealthChecker struct {
	service string
	deps    []Pinger
	logger  *zap.Logger
}

// NewHealthChecker creates a health checker for the named service.
// Dependencies are only consulted for readiness.
func NewHealthChecker(service string, logger *zap.Logger, deps ...Pinger) *HealthChecker {
	return &HealthChecker{service: service, deps: deps, logger: logger}
}

// healthResponse is the body of both health endpoints.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health handles GET /health.
func (h *HealthChecker) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: h.service}, h.logger)
}

// Ready handles GET /ready. Not ready when any backing dependency fails
// its ping.
func (h *HealthChecker) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, dep := range h.deps {
		if err := dep.PingContext(ctx); err != nil {
			h.logger.Warn("readiness_check_failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Service: h.service}, h.logger)
			return
		}
	}

	respondJSON(w, http.StatusOK, healthResponse{Status: "ready", Service: h.service}, h.logger)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed_to_encode_response", zap.Error(err))
	}
}
