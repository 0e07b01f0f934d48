package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/David-McSharry/quantify/internal/cache/redis"
	"github.com/David-McSharry/quantify/internal/config"
	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/platform/kalshi"
	"github.com/David-McSharry/quantify/internal/platform/manifold"
	"github.com/David-McSharry/quantify/internal/platform/metaculus"
	"github.com/David-McSharry/quantify/internal/platform/polymarket"
	"github.com/David-McSharry/quantify/internal/query"
	"github.com/David-McSharry/quantify/internal/relevance"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Builder  *query.Builder
	Scorer   *relevance.Scorer
	Adapters []domain.Adapter

	// Redis-backed pieces; nil outside server mode.
	SearchCache domain.SearchCache
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	scorer := relevance.NewScorer()
	deps := &Dependencies{
		Builder: query.NewBuilder(),
		Scorer:  scorer,
	}

	if cfg.Manifold.Enabled {
		deps.Adapters = append(deps.Adapters,
			manifold.NewAdapter(manifold.NewClient(cfg.Manifold.BaseURL), scorer, logger))
	}
	if cfg.Polymarket.Enabled {
		deps.Adapters = append(deps.Adapters,
			polymarket.NewAdapter(polymarket.NewClient(cfg.Polymarket.BaseURL), scorer, logger))
	}
	if cfg.Kalshi.Enabled {
		deps.Adapters = append(deps.Adapters,
			kalshi.NewAdapter(kalshi.NewClient(cfg.Kalshi.BaseURL), scorer, logger))
	}
	if cfg.Metaculus.Enabled {
		deps.Adapters = append(deps.Adapters,
			metaculus.NewAdapter(metaculus.NewClient(cfg.Metaculus.BaseURL), scorer, logger))
	}

	// --- Redis (only for modes that need the cache, limiter, and bus) ---
	if cfg.NeedsRedis() {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		deps.SearchCache = redis.NewSearchCache(client, cfg.Search.CacheTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(client)
		deps.SignalBus = redis.NewSignalBus(client)
	}

	return deps, cleanup, nil
}
