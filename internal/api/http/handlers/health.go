package handlers

import (
	"context"
	"net/http"
	"time"

	"walletscope/pkg/httputil"
)

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{})
}

// Readiness checks health of external services/clients.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.Scanner.CheckDependency(ctx); err != nil {
		werr := httputil.Error(w, r, http.StatusServiceUnavailable, "dependencies_unhealthy", "dependencies check failed", map[string]any{
			"error": err.Error(),
		})
		if werr != nil {
			h.Log.Errorf("Readiness handler error: %s", werr.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"dependencies": "healthy"})
}
