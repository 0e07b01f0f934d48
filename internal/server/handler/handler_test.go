package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/query"
	"github.com/David-McSharry/quantify/internal/relevance"
	"github.com/David-McSharry/quantify/internal/search"
)

type stubAdapter struct {
	name    domain.Platform
	markets []domain.Market
	err     error
}

func (s *stubAdapter) Name() domain.Platform { return s.name }

func (s *stubAdapter) Search(ctx context.Context, q string) ([]domain.Market, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.markets, nil
}

func (s *stubAdapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	for _, m := range s.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, domain.ErrNotFound
}

// memoryCache is an in-process stand-in for the Redis response cache.
type memoryCache struct {
	entries map[string][]domain.Market
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]domain.Market)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]domain.Market, error) {
	markets, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return markets, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, markets []domain.Market) error {
	c.entries[key] = markets
	return nil
}

func newTestEngine(adapters ...domain.Adapter) *search.Engine {
	return search.NewEngine(query.NewBuilder(), relevance.NewScorer(), adapters, slog.New(slog.DiscardHandler))
}

func testMarket(p domain.Platform, id string) domain.Market {
	return domain.Market{Platform: p, ID: id, Title: id, Probability: 0.5, Score: 7}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler([]domain.Adapter{
		&stubAdapter{name: domain.PlatformManifold},
		&stubAdapter{name: domain.PlatformKalshi},
	}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status    string   `json:"status"`
		Platforms []string `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []string{"manifold", "kalshi"}, body.Platforms)
}

func TestSearchEndpoint(t *testing.T) {
	engine := newTestEngine(&stubAdapter{
		name:    domain.PlatformManifold,
		markets: []domain.Market{testMarket(domain.PlatformManifold, "m1")},
	})
	h := NewSearchHandler(engine, query.NewBuilder(), nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"message":"quantum computing"}`))
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SearchID string          `json:"search_id"`
		Queries  []string        `json:"queries"`
		Markets  []domain.Market `json:"markets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SearchID)
	assert.Equal(t, []string{"quantum computing"}, resp.Queries)
	require.Len(t, resp.Markets, 1)
	assert.Equal(t, "m1", resp.Markets[0].ID)
}

func TestSearchEndpointEmptyMessage(t *testing.T) {
	called := &stubAdapter{name: domain.PlatformManifold}
	h := NewSearchHandler(newTestEngine(called), query.NewBuilder(), nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"message":"so that was the thing"}`))
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queries":[],"markets":[]}`, rec.Body.String())
}

func TestSearchEndpointBadBody(t *testing.T) {
	h := NewSearchHandler(newTestEngine(), query.NewBuilder(), nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"msg":`))
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpointServesFromCache(t *testing.T) {
	adapter := &stubAdapter{name: domain.PlatformManifold, markets: []domain.Market{
		testMarket(domain.PlatformManifold, "m1"),
	}}
	cache := newMemoryCache()
	h := NewSearchHandler(newTestEngine(adapter), query.NewBuilder(), cache, slog.New(slog.DiscardHandler))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"message":"quantum computing"}`))
		h.Search(rec, req)
		return rec
	}

	first := do()
	require.Equal(t, http.StatusOK, first.Code)
	assert.NotContains(t, first.Body.String(), `"cached":true`)

	second := do()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"cached":true`)
}

func TestSearchMarketsReportsPlatformErrors(t *testing.T) {
	engine := newTestEngine(
		&stubAdapter{name: domain.PlatformManifold, markets: []domain.Market{testMarket(domain.PlatformManifold, "m1")}},
		&stubAdapter{name: domain.PlatformKalshi, err: errors.New("upstream 500")},
	)
	h := NewSearchHandler(engine, query.NewBuilder(), nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/markets/search",
		strings.NewReader(`{"query":"bitcoin price","platforms":["manifold","kalshi"]}`))
	h.SearchMarkets(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Markets []domain.Market `json:"markets"`
		Errors  []struct {
			Platform string `json:"platform"`
			Error    string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Markets, 1)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "kalshi", resp.Errors[0].Platform)
}

func TestSearchMarketsUnknownPlatform(t *testing.T) {
	h := NewSearchHandler(newTestEngine(), query.NewBuilder(), nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/markets/search",
		strings.NewReader(`{"query":"bitcoin price","platforms":["predictit"]}`))
	h.SearchMarkets(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMarketEndpoint(t *testing.T) {
	engine := newTestEngine(&stubAdapter{
		name:    domain.PlatformKalshi,
		markets: []domain.Market{testMarket(domain.PlatformKalshi, "FEDRATE-CUT")},
	})
	h := NewMarketHandler(engine, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets/{platform}/{id}", h.GetMarket)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/kalshi/FEDRATE-CUT", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var m domain.Market
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "FEDRATE-CUT", m.ID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/kalshi/MISSING", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/predictit/X", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareEndpoint(t *testing.T) {
	engine := newTestEngine(
		&stubAdapter{name: domain.PlatformManifold, markets: []domain.Market{
			{Platform: domain.PlatformManifold, ID: "m1", Title: "Fed cut rates September", Probability: 0.8, Score: 10},
		}},
		&stubAdapter{name: domain.PlatformKalshi, markets: []domain.Market{
			{Platform: domain.PlatformKalshi, ID: "k1", Title: "Fed cut rates in September", Probability: 0.6, Score: 9},
		}},
	)
	h := NewCompareHandler(engine, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(`{"query":"fed rates"}`))
	h.Compare(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Comparisons []struct {
			Markets []domain.Market `json:"markets"`
			Spread  float64         `json:"spread"`
		} `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Comparisons, 1)
	assert.InDelta(t, 0.2, resp.Comparisons[0].Spread, 1e-9)
}

func TestCompareEndpointEmptyQuery(t *testing.T) {
	h := NewCompareHandler(newTestEngine(), slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(`{"query":"  "}`))
	h.Compare(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
