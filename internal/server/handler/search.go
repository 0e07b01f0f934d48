package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/query"
	"github.com/David-McSharry/quantify/internal/search"
)

// SearchHandler serves the aggregated search endpoints.
type SearchHandler struct {
	engine  *search.Engine
	builder *query.Builder
	cache   domain.SearchCache // nil disables response caching
	logger  *slog.Logger
}

// NewSearchHandler creates a SearchHandler. cache may be nil.
func NewSearchHandler(engine *search.Engine, builder *query.Builder, cache domain.SearchCache, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		engine:  engine,
		builder: builder,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "search")),
	}
}

type searchRequest struct {
	Message string `json:"message"`
}

type searchResponse struct {
	SearchID string          `json:"search_id,omitempty"`
	Queries  []string        `json:"queries"`
	Markets  []domain.Market `json:"markets"`
	Cached   bool            `json:"cached,omitempty"`
}

// Search derives queries from free text and aggregates results across every
// platform. Responses are cached on the derived query set, so two messages
// that reduce to the same queries share one cache entry.
// POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	queries := h.builder.Build(req.Message)
	if len(queries) == 0 {
		writeJSON(w, http.StatusOK, searchResponse{Queries: []string{}, Markets: []domain.Market{}})
		return
	}

	cacheKey := strings.Join(queries, "|")
	if h.cache != nil {
		if markets, err := h.cache.Get(r.Context(), cacheKey); err == nil {
			writeJSON(w, http.StatusOK, searchResponse{Queries: queries, Markets: markets, Cached: true})
			return
		} else if !errors.Is(err, domain.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "cache read failed", slog.Any("error", err))
		}
	}

	result, err := h.engine.SearchAcrossPlatforms(r.Context(), req.Message)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, result.Markets); err != nil {
			h.logger.WarnContext(r.Context(), "cache write failed", slog.Any("error", err))
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		SearchID: result.SearchID,
		Queries:  result.Queries,
		Markets:  result.Markets,
	})
}

type marketsSearchRequest struct {
	Query     string   `json:"query"`
	Platforms []string `json:"platforms"`
}

type platformErrorBody struct {
	Platform domain.Platform `json:"platform"`
	Error    string          `json:"error"`
}

type marketsSearchResponse struct {
	Markets []domain.Market     `json:"markets"`
	Errors  []platformErrorBody `json:"errors,omitempty"`
}

// SearchMarkets runs one literal query against a platform subset and reports
// per-platform failures in the response body.
// POST /api/markets/search
func (h *SearchHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	var req marketsSearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	platforms := make([]domain.Platform, 0, len(req.Platforms))
	for _, name := range req.Platforms {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown platform "+name)
			return
		}
		platforms = append(platforms, p)
	}

	markets, platformErrs, err := h.engine.SearchPlatforms(r.Context(), req.Query, platforms)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "no requested platform is configured")
			return
		}
		h.logger.ErrorContext(r.Context(), "platform search failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	resp := marketsSearchResponse{Markets: markets}
	if resp.Markets == nil {
		resp.Markets = []domain.Market{}
	}
	for _, pe := range platformErrs {
		resp.Errors = append(resp.Errors, platformErrorBody{Platform: pe.Platform, Error: pe.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}
