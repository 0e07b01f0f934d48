package kalshi

import (
	"context"
	"log/slog"
	"strings"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/platform"
	"github.com/David-McSharry/quantify/internal/relevance"
)

const (
	// eventPageLimit / maxEventPages bound the cursor-paginated event walk.
	eventPageLimit = 200
	maxEventPages  = 5

	// volumeBonus rewards markets with any traded volume over zero-volume
	// listings of equal text relevance.
	volumeBonus = 1
)

// Adapter implements domain.Adapter for Kalshi. Events are walked by cursor
// and scored as a pre-filter; only events with matching text get their
// nested markets fetched.
type Adapter struct {
	client *Client
	scorer *relevance.Scorer
	logger *slog.Logger
}

// NewAdapter creates a Kalshi search adapter.
func NewAdapter(client *Client, scorer *relevance.Scorer, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		scorer: scorer,
		logger: logger.With(slog.String("component", "kalshi")),
	}
}

// Name returns the platform identifier.
func (a *Adapter) Name() domain.Platform { return domain.PlatformKalshi }

// Search returns scored, open Kalshi markets matching the query.
func (a *Adapter) Search(ctx context.Context, query string) ([]domain.Market, error) {
	var out []domain.Market
	seen := make(map[string]bool)

	cursor := ""
	err := platform.ForEachPage(ctx, maxEventPages, func(ctx context.Context, _ int) (bool, error) {
		events, next, err := a.client.ListEvents(ctx, eventPageLimit, cursor)
		if err != nil {
			return false, err
		}
		for i := range events {
			ev := &events[i]
			if ev.synthetic() {
				continue
			}
			eventScore := a.scorer.Score(ev.Title+" "+ev.SubTitle+" "+ev.Category, query)
			if eventScore <= 0 {
				continue
			}

			markets, err := a.client.ListEventMarkets(ctx, ev.EventTicker)
			if err != nil {
				return false, err
			}
			for j := range markets {
				m := &markets[j]
				if m.Ticker == "" || seen[m.Ticker] {
					continue
				}
				title := m.displayTitle(ev)
				if flattenedTitle(title) {
					continue
				}
				score := a.scorer.Score(title, query)
				if eventScore > score {
					score = eventScore
				}
				if m.Volume > 0 {
					score += volumeBonus
				}
				seen[m.Ticker] = true
				out = append(out, toDomainMarket(m, title, score))
			}
		}
		cursor = next
		return next != "", nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetMarket returns a single normalized market by its ticker. The event
// context is not fetched, so the title comes from the market record alone.
func (a *Adapter) GetMarket(ctx context.Context, ticker string) (domain.Market, error) {
	m, err := a.client.GetMarket(ctx, ticker)
	if err != nil {
		return domain.Market{}, err
	}
	title := m.displayTitle(&APIEvent{})
	return toDomainMarket(&m, title, 0), nil
}

func toDomainMarket(m *APIMarket, title string, score int) domain.Market {
	yes := m.yesProbability()
	return domain.Market{
		Platform:    domain.PlatformKalshi,
		ID:          m.Ticker,
		Title:       title,
		URL:         "https://kalshi.com/markets/" + strings.ToLower(m.EventTicker),
		Description: platform.TruncateDescription(m.RulesText),
		Probability: yes,
		Outcomes:    domain.BinaryOutcomes(yes),
		Volume:      m.Volume,
		Score:       score,
	}
}

// Compile-time interface check.
var _ domain.Adapter = (*Adapter)(nil)
