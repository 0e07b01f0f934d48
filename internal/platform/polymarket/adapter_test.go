package polymarket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

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

// gammaHandler serves the two listing endpoints and single-market lookups
// from fixed fixtures.
func gammaHandler(t *testing.T, markets []APIMarket, events []APIEvent) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets":
			assert.Equal(t, "true", r.URL.Query().Get("active"))
			assert.Equal(t, "false", r.URL.Query().Get("closed"))
			json.NewEncoder(w).Encode(markets)
		case "/events":
			json.NewEncoder(w).Encode(events)
		default:
			for i := range markets {
				if r.URL.Path == "/markets/"+markets[i].ID {
					json.NewEncoder(w).Encode(markets[i])
					return
				}
			}
			http.NotFound(w, r)
		}
	})
}

func TestSearchDirectListing(t *testing.T) {
	active := flexBool(true)
	inactive := flexBool(false)

	adapter := newTestAdapter(t, gammaHandler(t, []APIMarket{
		{
			ID:            "1",
			Question:      "Bitcoin price above $100k by March?",
			Slug:          "bitcoin-100k",
			Active:        &active,
			Outcomes:      json.RawMessage(`["Yes", "No"]`),
			OutcomePrices: json.RawMessage(`["0.42", "0.58"]`),
			VolumeNum:     50000,
		},
		{ID: "2", Question: "Bitcoin price crash?", Closed: true},
		{ID: "3", Question: "Bitcoin price doubles?", Active: &inactive},
		{ID: "4", Question: "Will it snow in Oslo?", Active: &active},
	}, nil))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, domain.PlatformPolymarket, m.Platform)
	assert.Equal(t, "1", m.ID)
	assert.Equal(t, "Bitcoin price above $100k by March?", m.Title)
	assert.Equal(t, "https://polymarket.com/market/bitcoin-100k", m.URL)
	assert.Equal(t, 0.42, m.Probability)
	assert.Equal(t, 50000.0, m.Volume)
	assert.Positive(t, m.Score)
	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Yes", m.Outcomes[0].Name)
	assert.Equal(t, 0.58, m.Outcomes[1].Probability)
}

func TestSearchOutcomesEncodedAsString(t *testing.T) {
	// Gamma frequently sends outcomes and prices as JSON-encoded strings
	// rather than native arrays.
	adapter := newTestAdapter(t, gammaHandler(t, []APIMarket{
		{
			ID:            "1",
			Question:      "Bitcoin price above $100k?",
			Outcomes:      json.RawMessage(`"[\"Yes\", \"No\"]"`),
			OutcomePrices: json.RawMessage(`"[\"0.35\", \"0.65\"]"`),
		},
	}, nil))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.35, got[0].Probability)
	require.Len(t, got[0].Outcomes, 2)
	assert.Equal(t, "No", got[0].Outcomes[1].Name)
}

func TestSearchEventScoreLiftsNestedMarkets(t *testing.T) {
	adapter := newTestAdapter(t, gammaHandler(t, nil, []APIEvent{
		{
			ID:    "ev1",
			Title: "Bitcoin price outlook",
			Slug:  "bitcoin-price-outlook",
			Markets: []APIMarket{
				// No query tokens of its own; inherits the event score.
				{ID: "10", Question: "Will BTC exceed $150k?"},
			},
		},
		{
			ID:    "ev2",
			Title: "Eurovision winner",
			Slug:  "eurovision",
			Markets: []APIMarket{
				{ID: "20", Question: "Will Sweden win?"},
			},
		},
	}))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, "10", m.ID)
	// Phrase (8) + two tokens (4) + one adjacent pair (3) from the event
	// title.
	assert.Equal(t, 15, m.Score)
	assert.Equal(t, "https://polymarket.com/event/bitcoin-price-outlook", m.URL)
}

func TestSearchDeduplicatesAcrossPhases(t *testing.T) {
	shared := APIMarket{
		ID:       "1",
		Question: "Bitcoin price above $100k?",
		Slug:     "bitcoin-100k",
	}

	adapter := newTestAdapter(t, gammaHandler(t, []APIMarket{shared}, []APIEvent{
		{
			ID:      "ev1",
			Title:   "Bitcoin price outlook",
			Slug:    "bitcoin-price-outlook",
			Markets: []APIMarket{shared},
		},
	}))

	got, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestSearchStopsAfterShortEventPage(t *testing.T) {
	var eventCalls int
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets":
			json.NewEncoder(w).Encode([]APIMarket{})
		case "/events":
			eventCalls++
			assert.Equal(t, "0", r.URL.Query().Get("offset"))
			json.NewEncoder(w).Encode([]APIEvent{})
		}
	}))

	_, err := adapter.Search(context.Background(), "bitcoin price")
	require.NoError(t, err)
	assert.Equal(t, 1, eventCalls)
}

func TestSearchNonBinaryPicksOverlappingOutcome(t *testing.T) {
	adapter := newTestAdapter(t, gammaHandler(t, []APIMarket{
		{
			ID:            "1",
			Question:      "Who wins the Biden approval bet?",
			Outcomes:      json.RawMessage(`["Trump", "Biden"]`),
			OutcomePrices: json.RawMessage(`["0.3", "0.7"]`),
		},
	}, nil))

	got, err := adapter.Search(context.Background(), "biden approval")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.7, got[0].Probability)
}

func TestGetMarket(t *testing.T) {
	adapter := newTestAdapter(t, gammaHandler(t, []APIMarket{
		{
			ID:            "77",
			Question:      "Will the Fed cut rates in September?",
			Slug:          "fed-cut-september",
			Outcomes:      json.RawMessage(`["Yes", "No"]`),
			OutcomePrices: json.RawMessage(`["0.81", "0.19"]`),
			Events:        []APIEventRef{{Slug: "fed-decision"}},
			Volume:        flexFloat(1234),
		},
	}, nil))

	got, err := adapter.GetMarket(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "77", got.ID)
	assert.Equal(t, 0.81, got.Probability)
	assert.Equal(t, "https://polymarket.com/event/fed-decision", got.URL)
	assert.Equal(t, 1234.0, got.Volume)
}

func TestGetMarketNotFound(t *testing.T) {
	adapter := newTestAdapter(t, gammaHandler(t, nil, nil))

	_, err := adapter.GetMarket(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
