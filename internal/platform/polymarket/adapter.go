package polymarket

import (
	"context"
	"log/slog"
	"strings"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/platform"
	"github.com/David-McSharry/quantify/internal/relevance"
)

const (
	// directListLimit is the single large-limit direct market listing.
	directListLimit = 200

	// eventPageLimit / maxEventPages bound the offset-paginated event walk.
	eventPageLimit = 200
	maxEventPages  = 4
)

// Adapter implements domain.Adapter for Polymarket. Search runs in two
// phases: a direct market listing scored per record, then an event walk
// where each event's aggregate text acts as a cheap pre-filter before its
// nested markets are scored.
type Adapter struct {
	client *Client
	scorer *relevance.Scorer
	logger *slog.Logger
}

// NewAdapter creates a Polymarket search adapter.
func NewAdapter(client *Client, scorer *relevance.Scorer, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		scorer: scorer,
		logger: logger.With(slog.String("component", "polymarket")),
	}
}

// Name returns the platform identifier.
func (a *Adapter) Name() domain.Platform { return domain.PlatformPolymarket }

// Search returns scored, open Polymarket markets matching the query.
func (a *Adapter) Search(ctx context.Context, query string) ([]domain.Market, error) {
	var out []domain.Market
	seen := make(map[string]bool)

	// Phase one: direct market listing, each record scored on its own text.
	markets, err := a.client.ListMarkets(ctx, directListLimit)
	if err != nil {
		return nil, err
	}
	for i := range markets {
		m := &markets[i]
		if m.ID == "" || seen[m.ID] || !m.tradable() {
			continue
		}
		score := a.scorer.Score(m.displayTitle()+" "+m.Description, query)
		if score <= 0 {
			continue
		}
		seen[m.ID] = true
		out = append(out, a.toDomainMarket(m, "", query, score))
	}

	// Phase two: event walk. The event text is scored first; only positive
	// events get their nested markets inspected. A market's final score is
	// the maximum of its own score and its parent event's score.
	err = platform.ForEachPage(ctx, maxEventPages, func(ctx context.Context, page int) (bool, error) {
		events, err := a.client.ListEvents(ctx, eventPageLimit, page*eventPageLimit)
		if err != nil {
			return false, err
		}
		for i := range events {
			ev := &events[i]
			eventScore := a.scorer.Score(ev.Title+" "+ev.Description, query)
			if eventScore <= 0 {
				continue
			}
			for j := range ev.Markets {
				m := &ev.Markets[j]
				if m.ID == "" || seen[m.ID] || !m.tradable() {
					continue
				}
				score := a.scorer.Score(m.displayTitle()+" "+m.Description, query)
				if eventScore > score {
					score = eventScore
				}
				seen[m.ID] = true
				out = append(out, a.toDomainMarket(m, ev.Slug, query, score))
			}
		}
		return len(events) == eventPageLimit, nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetMarket returns a single normalized market by its Gamma ID. The empty
// query makes outcome resolution fall back to the Yes outcome or the first
// listed one.
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	m, err := a.client.GetMarket(ctx, id)
	if err != nil {
		return domain.Market{}, err
	}
	eventSlug := ""
	if len(m.Events) > 0 {
		eventSlug = m.Events[0].Slug
	}
	return a.toDomainMarket(&m, eventSlug, "", 0), nil
}

// toDomainMarket normalizes a Gamma market. Binary markets resolve
// probability from the "Yes" outcome's price; non-binary markets pick the
// outcome whose name best overlaps the query tokens, defaulting to the first
// outcome on a tie or no overlap.
func (a *Adapter) toDomainMarket(m *APIMarket, eventSlug, query string, score int) domain.Market {
	names := platform.StringList(m.Outcomes, []string{"Yes", "No"})
	prices := platform.FloatList(m.OutcomePrices)

	outcomes := make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		p := 0.5
		if i < len(prices) {
			p = platform.ClampProbability(prices[i])
		}
		outcomes = append(outcomes, domain.Outcome{Name: name, Probability: p})
	}

	probability := 0.5
	if len(outcomes) > 0 {
		probability = outcomes[pickOutcome(a.scorer, names, query)].Probability
	}

	if len(m.Events) > 0 && m.Events[0].Slug != "" {
		eventSlug = m.Events[0].Slug
	}
	u := "https://polymarket.com/market/" + m.Slug
	if m.Slug == "" {
		u = "https://polymarket.com/market/" + m.ID
	}
	if eventSlug != "" {
		u = "https://polymarket.com/event/" + eventSlug
	}

	return domain.Market{
		Platform:    domain.PlatformPolymarket,
		ID:          m.ID,
		Title:       m.displayTitle(),
		URL:         u,
		Description: platform.TruncateDescription(m.Description),
		Probability: probability,
		Outcomes:    outcomes,
		Volume:      m.volume(),
		Score:       score,
	}
}

// pickOutcome chooses which outcome carries the market's headline
// probability: the "Yes" outcome when one exists, otherwise the outcome with
// the highest query-token overlap, otherwise the first.
func pickOutcome(scorer *relevance.Scorer, names []string, query string) int {
	for i, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "yes") {
			return i
		}
	}

	queryTokens := scorer.QueryTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}
	qSet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		qSet[t] = struct{}{}
	}

	best, bestOverlap := 0, 0
	for i, name := range names {
		overlap := 0
		for _, t := range scorer.Tokenize(name) {
			if _, ok := qSet[t]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	return best
}

// Compile-time interface check.
var _ domain.Adapter = (*Adapter)(nil)
