package api

import (
	"net/http"

	"moduscap-be/internal/metrics"
)

type HealthHandler struct {
	registry *metrics.Registry
}

func NewHealthHandler(reg *metrics.Registry) *HealthHandler {
	return &HealthHandler{registry: reg}
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *HealthHandler) counters(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]any{"counters": h.registry.Snapshot()})
}
