package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/utils"
)

const readyTimeout = 2 * time.Second

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// Ready reports 503 while the credential store cannot be reached.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "database": "up"})
}
