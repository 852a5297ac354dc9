package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantfall/stockbot/internal/server"
	"github.com/quantfall/stockbot/internal/server/handler"
	"github.com/quantfall/stockbot/internal/server/ws"
)

// shutdownTimeout bounds how long graceful HTTP shutdown may take.
const shutdownTimeout = 10 * time.Second

// ServerMode runs the REST + WebSocket API. The bot controller is wired
// but stays stopped until a client starts it via the API.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// BotMode runs the API plus the autonomous poll loop: the bot is
// started from configuration and CheckSignals fires on a ticker.
func (a *App) BotMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in bot mode",
		slog.String("strategy", a.cfg.Bot.Strategy),
		slog.Bool("auto_trade", a.cfg.Bot.AutoTrade),
		slog.Duration("check_interval", a.cfg.Bot.CheckInterval.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)

	deps.Bot.Start(
		ctx,
		a.cfg.Bot.Symbols,
		a.cfg.Bot.Strategy,
		a.cfg.Bot.AutoTrade,
		a.cfg.Bot.TradeAmount,
	)

	g.Go(func() error {
		interval := a.cfg.Bot.CheckInterval.Duration
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// ctx is already cancelled; the stop event still has to
				// reach the bus.
				deps.Bot.Stop(context.WithoutCancel(ctx))
				return ctx.Err()
			case <-ticker.C:
				results := deps.Bot.CheckSignals(ctx)
				a.logger.InfoContext(ctx, "bot check complete",
					slog.Int("results", len(results)),
				)
			}
		}
	})

	return g.Wait()
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to
// the errgroup. The server is shut down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(),
		Market: handler.NewMarketHandler(
			deps.Market,
			a.cfg.Quotes.HistoryPeriod,
			a.cfg.Quotes.HistoryInterval,
		),
		Portfolio: handler.NewPortfolioHandler(deps.Portfolio, a.cfg.Portfolio.InitialCash),
		Signals:   handler.NewSignalHandler(deps.Signals),
		Bot:       handler.NewBotHandler(deps.Bot, a.cfg.Bot.TradeAmount),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
