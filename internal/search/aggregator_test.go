package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/query"
	"github.com/David-McSharry/quantify/internal/relevance"
)

type fakeAdapter struct {
	name    domain.Platform
	markets []domain.Market
	err     error

	mu      sync.Mutex
	queries []string
}

func (f *fakeAdapter) Name() domain.Platform { return f.name }

func (f *fakeAdapter) Search(ctx context.Context, q string) ([]domain.Market, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

func (f *fakeAdapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, domain.ErrNotFound
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestEngine(adapters []domain.Adapter, opts ...Option) *Engine {
	return NewEngine(query.NewBuilder(), relevance.NewScorer(), adapters, slog.New(slog.DiscardHandler), opts...)
}

func market(p domain.Platform, id string, score int, volume float64) domain.Market {
	return domain.Market{Platform: p, ID: id, Title: id, Score: score, Volume: volume}
}

func TestSearchAcrossPlatformsRanksAndMerges(t *testing.T) {
	manifold := &fakeAdapter{name: domain.PlatformManifold, markets: []domain.Market{
		market(domain.PlatformManifold, "m1", 10, 100),
		market(domain.PlatformManifold, "m2", 4, 900),
	}}
	kalshi := &fakeAdapter{name: domain.PlatformKalshi, markets: []domain.Market{
		market(domain.PlatformKalshi, "k1", 4, 5000),
	}}

	engine := newTestEngine([]domain.Adapter{manifold, kalshi})

	// Two keywords and no topic trigger, so exactly one derived query.
	got, err := engine.SearchAcrossPlatforms(context.Background(), "quantum computing")
	require.NoError(t, err)
	require.Equal(t, []string{"quantum computing"}, got.Queries)
	require.NotEmpty(t, got.SearchID)

	require.Len(t, got.Markets, 3)
	assert.Equal(t, "m1", got.Markets[0].ID)
	// Equal scores fall back to volume.
	assert.Equal(t, "k1", got.Markets[1].ID)
	assert.Equal(t, "m2", got.Markets[2].ID)
}

func TestSearchAcrossPlatformsDeduplicates(t *testing.T) {
	// The same market comes back for two derived queries with different
	// scores; the higher-scored copy must win.
	calls := 0
	engine := newTestEngine([]domain.Adapter{&scriptedAdapter{
		name: domain.PlatformManifold,
		search: func(q string) ([]domain.Market, error) {
			calls++
			score := 5
			if calls > 1 {
				score = 9
			}
			return []domain.Market{market(domain.PlatformManifold, "m1", score, 10)}, nil
		},
	}})

	// "bitcoin" alone triggers the topical query, giving two derived
	// queries over the same adapter.
	got, err := engine.SearchAcrossPlatforms(context.Background(), "bitcoin thoughts?")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got.Queries), 2)
	require.Len(t, got.Markets, 1)
	assert.Equal(t, 9, got.Markets[0].Score)
}

func TestSearchAcrossPlatformsTruncates(t *testing.T) {
	var markets []domain.Market
	for i := 0; i < 30; i++ {
		markets = append(markets, market(domain.PlatformMetaculus, fmt.Sprintf("q%d", i), 30-i, 0))
	}
	engine := newTestEngine([]domain.Adapter{&fakeAdapter{name: domain.PlatformMetaculus, markets: markets}})

	got, err := engine.SearchAcrossPlatforms(context.Background(), "quantum computing")
	require.NoError(t, err)
	require.Len(t, got.Markets, 20)
	assert.Equal(t, "q0", got.Markets[0].ID)
	assert.Equal(t, "q19", got.Markets[19].ID)
}

func TestSearchAcrossPlatformsSurvivesProviderFailure(t *testing.T) {
	broken := &fakeAdapter{name: domain.PlatformPolymarket, err: errors.New("upstream 500")}
	healthy := &fakeAdapter{name: domain.PlatformManifold, markets: []domain.Market{
		market(domain.PlatformManifold, "m1", 8, 10),
	}}
	engine := newTestEngine([]domain.Adapter{broken, healthy})

	got, err := engine.SearchAcrossPlatforms(context.Background(), "quantum computing")
	require.NoError(t, err)
	require.Len(t, got.Markets, 1)
}

func TestSearchAcrossPlatformsAllFailedIsEmptySuccess(t *testing.T) {
	engine := newTestEngine([]domain.Adapter{
		&fakeAdapter{name: domain.PlatformManifold, err: errors.New("down")},
		&fakeAdapter{name: domain.PlatformKalshi, err: errors.New("down")},
	})

	got, err := engine.SearchAcrossPlatforms(context.Background(), "quantum computing")
	require.NoError(t, err)
	assert.Empty(t, got.Markets)
}

func TestSearchAcrossPlatformsPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine([]domain.Adapter{&scriptedAdapter{
		name: domain.PlatformManifold,
		search: func(q string) ([]domain.Market, error) {
			return nil, context.Canceled
		},
	}})

	_, err := engine.SearchAcrossPlatforms(ctx, "quantum computing")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearchAcrossPlatformsNoKeywordsNoNetwork(t *testing.T) {
	adapter := &fakeAdapter{name: domain.PlatformManifold}
	engine := newTestEngine([]domain.Adapter{adapter})

	got, err := engine.SearchAcrossPlatforms(context.Background(), "so that was the thing")
	require.NoError(t, err)
	assert.Empty(t, got.Queries)
	assert.Empty(t, got.Markets)
	assert.Zero(t, adapter.callCount())
}

func TestSearchPlatformsFiltersAndReportsErrors(t *testing.T) {
	manifold := &fakeAdapter{name: domain.PlatformManifold, markets: []domain.Market{
		market(domain.PlatformManifold, "m1", 8, 10),
	}}
	kalshi := &fakeAdapter{name: domain.PlatformKalshi, err: errors.New("timeout")}
	metaculus := &fakeAdapter{name: domain.PlatformMetaculus}
	engine := newTestEngine([]domain.Adapter{manifold, kalshi, metaculus})

	markets, errs, err := engine.SearchPlatforms(context.Background(), "bitcoin price",
		[]domain.Platform{domain.PlatformManifold, domain.PlatformKalshi})
	require.NoError(t, err)

	require.Len(t, markets, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.PlatformKalshi, errs[0].Platform)
	assert.Zero(t, metaculus.callCount())
}

func TestSearchPlatformsUnknownFilter(t *testing.T) {
	engine := newTestEngine([]domain.Adapter{&fakeAdapter{name: domain.PlatformManifold}})

	_, _, err := engine.SearchPlatforms(context.Background(), "bitcoin price",
		[]domain.Platform{domain.Platform("predictit")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetMarketDispatch(t *testing.T) {
	manifold := &fakeAdapter{name: domain.PlatformManifold, markets: []domain.Market{
		market(domain.PlatformManifold, "m1", 0, 10),
	}}
	engine := newTestEngine([]domain.Adapter{manifold})

	got, err := engine.GetMarket(context.Background(), domain.PlatformManifold, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)

	_, err = engine.GetMarket(context.Background(), domain.PlatformKalshi, "k1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var events []ProgressEvent

	engine := newTestEngine(
		[]domain.Adapter{&fakeAdapter{name: domain.PlatformManifold, markets: []domain.Market{
			market(domain.PlatformManifold, "m1", 8, 10),
		}}},
		WithProgress(func(ev ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}),
	)

	got, err := engine.SearchAcrossPlatforms(context.Background(), "quantum computing")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, StageStarted, events[0].Stage)
	assert.Equal(t, []string{"quantum computing"}, events[0].Queries)
	assert.Equal(t, StagePlatform, events[1].Stage)
	assert.Equal(t, domain.PlatformManifold, events[1].Platform)
	assert.Equal(t, 1, events[1].Count)
	assert.Equal(t, StageFinished, events[2].Stage)
	for _, ev := range events {
		assert.Equal(t, got.SearchID, ev.SearchID)
	}
}

// scriptedAdapter runs an arbitrary search function, for tests that need
// per-call behavior.
type scriptedAdapter struct {
	name   domain.Platform
	search func(q string) ([]domain.Market, error)
}

func (s *scriptedAdapter) Name() domain.Platform { return s.name }

func (s *scriptedAdapter) Search(ctx context.Context, q string) ([]domain.Market, error) {
	return s.search(q)
}

func (s *scriptedAdapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	return domain.Market{}, domain.ErrNotFound
}
