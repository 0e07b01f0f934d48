package manifold

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/relevance"
)

// Adapter implements domain.Adapter for Manifold Markets: one native search
// call, local filtering of resolved/closed markets, and relevance scoring of
// title plus description.
type Adapter struct {
	client *Client
	scorer *relevance.Scorer
	logger *slog.Logger
}

// NewAdapter creates a Manifold search adapter.
func NewAdapter(client *Client, scorer *relevance.Scorer, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		scorer: scorer,
		logger: logger.With(slog.String("component", "manifold")),
	}
}

// Name returns the platform identifier.
func (a *Adapter) Name() domain.Platform { return domain.PlatformManifold }

// Search queries Manifold's native search endpoint, drops resolved markets
// and markets whose close time has passed, scores the remainder from title
// and description, and drops zero-score candidates. Multi-choice markets get
// their top answers fetched as outcomes; a failed answer fetch leaves the
// market binary instead of failing the search.
func (a *Adapter) Search(ctx context.Context, query string) ([]domain.Market, error) {
	raw, err := a.client.SearchMarkets(ctx, query)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	candidates := make([]APIMarket, 0, len(raw))
	for _, m := range raw {
		if m.IsResolved {
			continue
		}
		if m.CloseTime != 0 && m.CloseTime <= now {
			continue
		}
		candidates = append(candidates, m)
	}

	out := make([]domain.Market, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]
		score := a.scorer.Score(m.Question+" "+m.TextDescription, query)
		if score <= 0 {
			continue
		}
		dm := m.ToDomainMarket()
		dm.Score = score
		out = append(out, dm)
	}

	if err := a.fetchAnswers(ctx, candidates, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchAnswers replaces the binary outcomes of multi-choice results with
// their top answers. Fetches run concurrently; a provider failure only logs,
// but cancellation aborts the whole search.
func (a *Adapter) fetchAnswers(ctx context.Context, candidates []APIMarket, results []domain.Market) error {
	multi := make(map[string]bool, len(candidates))
	for i := range candidates {
		if candidates[i].multiChoice() {
			multi[candidates[i].ID] = true
		}
	}
	if len(multi) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		if !multi[results[i].ID] {
			continue
		}
		dm := &results[i]
		g.Go(func() error {
			detail, err := a.client.GetMarket(gctx, dm.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				a.logger.WarnContext(gctx, "answer fetch failed",
					slog.String("market_id", dm.ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if outcomes := detail.topAnswers(); len(outcomes) > 0 {
				dm.Outcomes = outcomes
				dm.Probability = outcomes[0].Probability
			}
			return nil
		})
	}
	return g.Wait()
}

// GetMarket returns a single normalized market by its Manifold ID.
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	detail, err := a.client.GetMarket(ctx, id)
	if err != nil {
		return domain.Market{}, err
	}
	dm := detail.ToDomainMarket()
	if detail.multiChoice() {
		if outcomes := detail.topAnswers(); len(outcomes) > 0 {
			dm.Outcomes = outcomes
			dm.Probability = outcomes[0].Probability
		}
	}
	return dm, nil
}

// Compile-time interface check.
var _ domain.Adapter = (*Adapter)(nil)
