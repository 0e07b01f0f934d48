// Package domain defines the core types shared across the quantify engine:
// the normalized Market record, the platform enum, and the interfaces that
// adapters, caches, and the signal bus implement.
package domain

import "fmt"

// Platform identifies a prediction-market provider.
type Platform string

const (
	PlatformManifold   Platform = "manifold"
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
	PlatformMetaculus  Platform = "metaculus"
)

// Platforms lists every supported provider in dispatch order.
var Platforms = []Platform{
	PlatformManifold,
	PlatformPolymarket,
	PlatformKalshi,
	PlatformMetaculus,
}

// ParsePlatform converts a string into a Platform, returning an error for
// unknown provider names.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("domain: unknown platform %q: %w", s, ErrNotFound)
}

// Outcome is a single named outcome of a market with its current probability.
type Outcome struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// Market is a normalized prediction-market candidate returned by an adapter.
// Probability is always within [0,1]; sources that deliver malformed or
// missing values fall back to 0.5. Score is computed per search call and is
// never serialized or persisted.
type Market struct {
	Platform    Platform  `json:"platform"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Probability float64   `json:"probability"`
	Outcomes    []Outcome `json:"outcomes,omitempty"`
	Volume      float64   `json:"volume"`

	// Score is the ephemeral relevance score used for ranking and as the
	// dedup tie-break key within a single search call.
	Score int `json:"-"`
}

// MarketKey is the identity key used for deduplication across providers.
type MarketKey struct {
	Platform Platform
	ID       string
}

// Key returns the market's identity key.
func (m Market) Key() MarketKey {
	return MarketKey{Platform: m.Platform, ID: m.ID}
}

// BinaryOutcomes builds the canonical Yes/No outcome pair for a binary
// market with the given Yes probability.
func BinaryOutcomes(yes float64) []Outcome {
	return []Outcome{
		{Name: "Yes", Probability: yes},
		{Name: "No", Probability: 1 - yes},
	}
}
