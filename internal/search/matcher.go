package search

import (
	"context"

	"github.com/David-McSharry/quantify/internal/domain"
)

// matchConfidence is the minimum title similarity for two markets from
// different platforms to be treated as the same real-world question.
const matchConfidence = 0.5

// Comparison is one cross-platform group of markets judged to cover the same
// question, with the probability spread across platforms.
type Comparison struct {
	Title      string          `json:"title"`
	Markets    []domain.Market `json:"markets"`
	Confidence float64         `json:"confidence"`
	Spread     float64         `json:"spread"`
}

// ComparePlatforms searches every platform for one query and groups results
// that match across platforms, reporting how far the platforms disagree on
// each question. Groups need at least two platforms; single-platform hits
// are dropped.
func (e *Engine) ComparePlatforms(ctx context.Context, q string) ([]Comparison, error) {
	markets, _, err := e.fanOut(ctx, "", q, e.adapters)
	if err != nil {
		return nil, err
	}
	return e.groupMatches(rank(dedupe(markets))), nil
}

// groupMatches walks ranked markets and greedily anchors groups on the best
// remaining market. A group holds at most one market per platform.
func (e *Engine) groupMatches(markets []domain.Market) []Comparison {
	used := make([]bool, len(markets))
	var out []Comparison

	for i, anchor := range markets {
		if used[i] {
			continue
		}
		used[i] = true

		group := Comparison{Title: anchor.Title, Markets: []domain.Market{anchor}, Confidence: 1}
		taken := map[domain.Platform]bool{anchor.Platform: true}

		for j := i + 1; j < len(markets); j++ {
			if used[j] || taken[markets[j].Platform] {
				continue
			}
			sim := e.titleSimilarity(anchor.Title, markets[j].Title)
			if sim < matchConfidence {
				continue
			}
			used[j] = true
			taken[markets[j].Platform] = true
			group.Markets = append(group.Markets, markets[j])
			if sim < group.Confidence {
				group.Confidence = sim
			}
		}

		if len(group.Markets) < 2 {
			continue
		}
		group.Spread = spread(group.Markets)
		out = append(out, group)
	}
	return out
}

// titleSimilarity is the share of meaningful tokens the two titles have in
// common, relative to the longer title.
func (e *Engine) titleSimilarity(a, b string) float64 {
	ta := e.scorer.QueryTokens(a)
	tb := e.scorer.QueryTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	overlap := 0
	for _, t := range tb {
		if set[t] {
			overlap++
			set[t] = false
		}
	}

	longer := len(ta)
	if len(tb) > longer {
		longer = len(tb)
	}
	return float64(overlap) / float64(longer)
}

// spread is the gap between the highest and lowest probability in a group.
func spread(markets []domain.Market) float64 {
	lo, hi := markets[0].Probability, markets[0].Probability
	for _, m := range markets[1:] {
		if m.Probability < lo {
			lo = m.Probability
		}
		if m.Probability > hi {
			hi = m.Probability
		}
	}
	return hi - lo
}
