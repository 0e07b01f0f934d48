// Package search contains the aggregation engine: it derives queries from
// free text, fans out to every platform adapter concurrently, and merges the
// scored candidates into one ranked result set.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/query"
	"github.com/David-McSharry/quantify/internal/relevance"
)

// maxResults caps the final ranked result set.
const maxResults = 20

// PlatformError records one provider's failure during a fan-out. Provider
// failures are degradation, not search failure; they never abort the call.
type PlatformError struct {
	Platform domain.Platform `json:"platform"`
	Err      error           `json:"-"`
}

// Error implements the error interface.
func (e PlatformError) Error() string {
	return fmt.Sprintf("%s: %v", e.Platform, e.Err)
}

// Result is one completed free-text search.
type Result struct {
	SearchID string          `json:"search_id"`
	Queries  []string        `json:"queries"`
	Markets  []domain.Market `json:"markets"`
}

// Engine aggregates search results across platform adapters.
type Engine struct {
	builder  *query.Builder
	scorer   *relevance.Scorer
	adapters []domain.Adapter
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress installs a sink for per-search progress events. The sink is
// called from the search goroutine and must not block.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// NewEngine creates the aggregation engine over the given adapters.
func NewEngine(builder *query.Builder, scorer *relevance.Scorer, adapters []domain.Adapter, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		builder:  builder,
		scorer:   scorer,
		adapters: adapters,
		logger:   logger.With(slog.String("component", "search")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchAcrossPlatforms derives queries from free text and runs each against
// every adapter. Queries run sequentially; within one query all adapters run
// concurrently. Provider failures are logged and skipped, so an all-failed
// search returns an empty result rather than an error. Only context
// cancellation fails the call.
func (e *Engine) SearchAcrossPlatforms(ctx context.Context, freeText string) (Result, error) {
	result := Result{
		SearchID: uuid.NewString(),
		Markets:  []domain.Market{},
	}

	result.Queries = e.builder.Build(freeText)
	e.emit(ProgressEvent{SearchID: result.SearchID, Stage: StageStarted, Queries: result.Queries})
	if len(result.Queries) == 0 {
		e.emit(ProgressEvent{SearchID: result.SearchID, Stage: StageFinished})
		return result, nil
	}

	var all []domain.Market
	for _, q := range result.Queries {
		markets, errs, err := e.fanOut(ctx, result.SearchID, q, e.adapters)
		if err != nil {
			return Result{}, err
		}
		for _, pe := range errs {
			e.logger.WarnContext(ctx, "platform search failed",
				slog.String("search_id", result.SearchID),
				slog.String("platform", string(pe.Platform)),
				slog.String("query", q),
				slog.Any("error", pe.Err))
		}
		all = append(all, markets...)
	}

	result.Markets = rank(dedupe(all))
	e.emit(ProgressEvent{SearchID: result.SearchID, Stage: StageFinished, Count: len(result.Markets)})
	e.logger.InfoContext(ctx, "search complete",
		slog.String("search_id", result.SearchID),
		slog.Int("queries", len(result.Queries)),
		slog.Int("markets", len(result.Markets)))
	return result, nil
}

// SearchPlatforms runs one literal query against a subset of platforms and
// reports provider failures to the caller instead of only logging them. An
// empty filter means all platforms.
func (e *Engine) SearchPlatforms(ctx context.Context, q string, platforms []domain.Platform) ([]domain.Market, []PlatformError, error) {
	adapters, err := e.selectAdapters(platforms)
	if err != nil {
		return nil, nil, err
	}

	markets, errs, err := e.fanOut(ctx, "", q, adapters)
	if err != nil {
		return nil, nil, err
	}
	return rank(dedupe(markets)), errs, nil
}

// GetMarket dispatches a single-market lookup to the named platform's
// adapter without any network fan-out.
func (e *Engine) GetMarket(ctx context.Context, platform domain.Platform, id string) (domain.Market, error) {
	for _, a := range e.adapters {
		if a.Name() == platform {
			return a.GetMarket(ctx, id)
		}
	}
	return domain.Market{}, fmt.Errorf("search: platform %q not configured: %w", platform, domain.ErrNotFound)
}

// fanOut runs one query against the given adapters concurrently and joins.
// Each goroutine writes only its own slot. Provider errors are captured per
// platform; cancellation is returned and cancels the siblings.
func (e *Engine) fanOut(ctx context.Context, searchID, q string, adapters []domain.Adapter) ([]domain.Market, []PlatformError, error) {
	results := make([][]domain.Market, len(adapters))
	failures := make([]error, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range adapters {
		g.Go(func() error {
			markets, err := a.Search(gctx, q)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failures[i] = err
				e.emitPlatform(searchID, a.Name(), q, 0, err)
				return nil
			}
			results[i] = markets
			e.emitPlatform(searchID, a.Name(), q, len(markets), nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var markets []domain.Market
	var errs []PlatformError
	for i, a := range adapters {
		markets = append(markets, results[i]...)
		if failures[i] != nil {
			errs = append(errs, PlatformError{Platform: a.Name(), Err: failures[i]})
		}
	}
	return markets, errs, nil
}

// selectAdapters resolves a platform filter to adapters, preserving dispatch
// order. An empty filter selects everything.
func (e *Engine) selectAdapters(platforms []domain.Platform) ([]domain.Adapter, error) {
	if len(platforms) == 0 {
		return e.adapters, nil
	}
	want := make(map[domain.Platform]bool, len(platforms))
	for _, p := range platforms {
		want[p] = true
	}
	var out []domain.Adapter
	for _, a := range e.adapters {
		if want[a.Name()] {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("search: no configured platform matches filter %v: %w", platforms, domain.ErrNotFound)
	}
	return out, nil
}

// dedupe collapses markets sharing a (platform, id) key, keeping the higher
// score and, on a tie, the higher volume.
func dedupe(markets []domain.Market) []domain.Market {
	index := make(map[domain.MarketKey]int, len(markets))
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		i, ok := index[m.Key()]
		if !ok {
			index[m.Key()] = len(out)
			out = append(out, m)
			continue
		}
		kept := out[i]
		if m.Score > kept.Score || (m.Score == kept.Score && m.Volume > kept.Volume) {
			out[i] = m
		}
	}
	return out
}

// rank sorts by descending score, breaking ties by descending volume, and
// truncates to the result cap.
func rank(markets []domain.Market) []domain.Market {
	sort.SliceStable(markets, func(i, j int) bool {
		if markets[i].Score != markets[j].Score {
			return markets[i].Score > markets[j].Score
		}
		return markets[i].Volume > markets[j].Volume
	})
	if len(markets) > maxResults {
		markets = markets[:maxResults]
	}
	return markets
}
