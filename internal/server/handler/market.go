package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/search"
)

// MarketHandler serves single-market odds lookups.
type MarketHandler struct {
	engine *search.Engine
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(engine *search.Engine, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "market")),
	}
}

// GetMarket returns the current odds for one market on one platform.
// GET /api/markets/{platform}/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(pathParam(r, "platform"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown platform "+pathParam(r, "platform"))
		return
	}
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "market id must not be empty")
		return
	}

	market, err := h.engine.GetMarket(r.Context(), platform, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "market lookup failed",
			slog.String("platform", string(platform)),
			slog.String("id", id),
			slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "market lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, market)
}
