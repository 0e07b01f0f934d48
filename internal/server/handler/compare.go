package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/David-McSharry/quantify/internal/search"
)

// CompareHandler serves cross-platform probability comparison.
type CompareHandler struct {
	engine *search.Engine
	logger *slog.Logger
}

// NewCompareHandler creates a CompareHandler.
func NewCompareHandler(engine *search.Engine, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "compare")),
	}
}

type compareRequest struct {
	Query string `json:"query"`
}

type compareResponse struct {
	Comparisons []search.Comparison `json:"comparisons"`
}

// Compare searches every platform for one query and groups markets covering
// the same question, reporting the probability spread per group.
// POST /api/compare
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	comparisons, err := h.engine.ComparePlatforms(r.Context(), req.Query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "compare failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "compare failed")
		return
	}
	if comparisons == nil {
		comparisons = []search.Comparison{}
	}

	writeJSON(w, http.StatusOK, compareResponse{Comparisons: comparisons})
}
