package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/David-McSharry/quantify/internal/search"
	"github.com/David-McSharry/quantify/internal/server"
	"github.com/David-McSharry/quantify/internal/server/handler"
	"github.com/David-McSharry/quantify/internal/server/ws"
)

// shutdownTimeout is the grace period for in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// ServerMode runs the HTTP + WebSocket gateway until the context is
// cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode",
		slog.Int("platforms", len(deps.Adapters)),
		slog.Int("port", a.cfg.Server.Port),
	)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	// Progress events flow engine -> signal bus -> hub -> clients. Publish
	// failures only cost a progress frame, never the search.
	progress := func(ev search.ProgressEvent) {
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err := deps.SignalBus.Publish(ctx, ws.ProgressChannel(ev.SearchID), payload); err != nil {
			a.logger.DebugContext(ctx, "progress publish failed",
				slog.String("search_id", ev.SearchID),
				slog.String("error", err.Error()),
			)
		}
	}

	engine := search.NewEngine(deps.Builder, deps.Scorer, deps.Adapters, a.logger,
		search.WithProgress(progress))

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(deps.Adapters, a.logger),
		Search:  handler.NewSearchHandler(engine, deps.Builder, deps.SearchCache, a.logger),
		Markets: handler.NewMarketHandler(engine, a.logger),
		Compare: handler.NewCompareHandler(engine, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, deps.RateLimiter, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	})

	return g.Wait()
}

// QueryMode runs one search from the command line and prints the aggregated
// result as JSON on stdout.
func (a *App) QueryMode(ctx context.Context, deps *Dependencies) error {
	text := strings.TrimSpace(a.queryText)
	if text == "" {
		return fmt.Errorf("app: query mode needs a search message")
	}

	engine := search.NewEngine(deps.Builder, deps.Scorer, deps.Adapters, a.logger)

	result, err := engine.SearchAcrossPlatforms(ctx, text)
	if err != nil {
		return fmt.Errorf("app: query mode: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("app: encode result: %w", err)
	}
	return nil
}
