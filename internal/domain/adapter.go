package domain

import (
	"context"
	"time"
)

// Adapter is the uniform per-provider search contract. Implementations fetch,
// paginate, parse, and score candidate markets from one provider.
//
// Search returns only candidates with a positive relevance score, each with
// Score populated. A malformed record must be skipped, never abort the call.
// Context cancellation aborts every in-flight page request and is returned
// as ctx.Err().
type Adapter interface {
	Name() Platform
	Search(ctx context.Context, query string) ([]Market, error)
	GetMarket(ctx context.Context, id string) (Market, error)
}

// SearchCache caches fully aggregated search responses on the gateway side.
// The engine itself never reads or writes it.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]Market, error)
	Set(ctx context.Context, key string, markets []Market) error
}

// RateLimiter limits inbound API requests per client key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus carries ephemeral progress events from the gateway to WebSocket
// subscribers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
