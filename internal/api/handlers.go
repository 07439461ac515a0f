package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ignite/campaign-estimator/internal/config"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store  *Store
	config *config.Config
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, store *Store) *Handlers {
	return &Handlers{config: cfg, store: store}
}

// HealthCheck returns service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
