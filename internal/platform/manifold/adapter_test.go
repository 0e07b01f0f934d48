package manifold

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/relevance"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	client.httpClient = srv.Client()
	return NewAdapter(client, relevance.NewScorer(), slog.New(slog.DiscardHandler))
}

func TestSearchFiltersResolvedAndClosed(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()
	past := time.Now().Add(-24 * time.Hour).UnixMilli()

	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/search-markets", r.URL.Path)
		assert.Equal(t, "bitcoin price", r.URL.Query().Get("term"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode([]APIMarket{
			{ID: "open", Question: "Bitcoin price above $100k?", Probability: ptr(0.4), CloseTime: future, Volume: 1000},
			{ID: "resolved", Question: "Bitcoin price prediction", Probability: ptr(0.9), IsResolved: true},
			{ID: "closed", Question: "Bitcoin price in 2020", Probability: ptr(0.1), CloseTime: past},
			{ID: "irrelevant", Question: "Will it rain in Paris?", Probability: ptr(0.5), CloseTime: future},
		})
	}))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, domain.PlatformManifold, m.Platform)
	assert.Equal(t, "open", m.ID)
	assert.Positive(t, m.Score)
	assert.Equal(t, 0.4, m.Probability)
	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Yes", m.Outcomes[0].Name)
	assert.InDelta(t, 0.6, m.Outcomes[1].Probability, 1e-9)
}

func TestSearchMalformedProbabilityFallsBack(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()

	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]APIMarket{
			{ID: "noprob", Question: "Bitcoin price above $1M?", CloseTime: future},
		})
	}))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Probability)
}

func TestSearchMultiChoiceFetchesAnswers(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()

	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/search-markets":
			json.NewEncoder(w).Encode([]APIMarket{
				{ID: "mc1", Question: "Next fed chair?", OutcomeType: "MULTIPLE_CHOICE", CloseTime: future},
			})
		case "/v0/market/mc1":
			json.NewEncoder(w).Encode(map[string]any{
				"id":       "mc1",
				"question": "Next fed chair?",
				"answers": []APIAnswer{
					{Text: "Candidate A", Probability: 0.2},
					{Text: "Candidate B", Probability: 0.55},
					{Text: "Other", Probability: 0.25, IsOther: true},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	got, err := adapter.Search(context.Background(), "fed chair")
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Candidate B", m.Outcomes[0].Name)
	assert.Equal(t, 0.55, m.Probability)
}

func TestSearchAnswerFetchFailureKeepsMarket(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()

	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/search-markets" {
			json.NewEncoder(w).Encode([]APIMarket{
				{ID: "mc1", Question: "Next fed chair?", OutcomeType: "MULTIPLE_CHOICE", CloseTime: future, Probability: ptr(0.3)},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	got, err := adapter.Search(context.Background(), "fed chair")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.3, got[0].Probability)
}

func TestSearchCancelledDuringAnswerFetch(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/search-markets" {
			json.NewEncoder(w).Encode([]APIMarket{
				{ID: "mc1", Question: "Next fed chair?", OutcomeType: "MULTIPLE_CHOICE", CloseTime: future},
			})
			return
		}
		// Cancel while the answer fetch is in flight and hold the request
		// open until the client gives up.
		cancel()
		<-r.Context().Done()
	}))

	_, err := adapter.Search(ctx, "fed chair")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearchProviderFailure(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := adapter.Search(context.Background(), "bitcoin price")
	assert.Error(t, err)
}

func TestGetMarket(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/market/abc", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "abc",
			"question":    "Will X happen?",
			"probability": 0.73,
			"volume":      321.0,
		})
	}))

	got, err := adapter.GetMarket(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, 0.73, got.Probability)
	assert.Equal(t, 321.0, got.Volume)
}

func ptr(f float64) *float64 { return &f }
