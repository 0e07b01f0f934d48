package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/David-McSharry/quantify/internal/domain"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	platforms []string
	logger    *slog.Logger
}

// NewHealthHandler creates a HealthHandler reporting the given adapters as
// the set of searchable platforms.
func NewHealthHandler(adapters []domain.Adapter, logger *slog.Logger) *HealthHandler {
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, string(a.Name()))
	}
	return &HealthHandler{platforms: names, logger: logger}
}

// HealthCheck responds with the server status and the enabled platforms.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"platforms": h.platforms,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
