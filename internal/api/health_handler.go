package api

import (
	"context"
	"net/http"
	"time"

	"github.com/blagoySimandov/teachermail/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.EnrichError(r.Context(), err, "health")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
