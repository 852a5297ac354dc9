package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantfall/stockbot/internal/cache/memory"
	"github.com/quantfall/stockbot/internal/cache/redis"
	"github.com/quantfall/stockbot/internal/config"
	"github.com/quantfall/stockbot/internal/domain"
	"github.com/quantfall/stockbot/internal/notify"
	"github.com/quantfall/stockbot/internal/platform/yahoo"
	"github.com/quantfall/stockbot/internal/service"
	"github.com/quantfall/stockbot/internal/strategy"
)

// Dependencies bundles every domain-level dependency the application
// modes need. It is constructed by Wire and torn down by the returned
// cleanup function.
type Dependencies struct {
	QuoteCache domain.QuoteCache
	SignalBus  domain.SignalBus

	Market    *service.MarketService
	Signals   *service.SignalService
	Portfolio *service.PortfolioService
	Bot       *service.BotService

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the
// configuration. When Redis is disabled the quote cache and event bus
// run in process.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Caches and event bus ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
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
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.QuoteCache = redis.NewQuoteCache(redisClient, cfg.Quotes.CacheTTL.Duration)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	} else {
		deps.QuoteCache = memory.NewQuoteCache(cfg.Quotes.CacheTTL.Duration)
		deps.SignalBus = memory.NewSignalBus()
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Quote provider and services ---
	provider := yahoo.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.RequestTimeout.Duration)

	registry := strategy.NewDefaultRegistry()

	deps.Market = service.NewMarketService(provider, deps.QuoteCache, logger)
	deps.Signals = service.NewSignalService(
		deps.Market,
		registry,
		deps.SignalBus,
		cfg.Quotes.HistoryPeriod,
		cfg.Quotes.HistoryInterval,
		logger,
	)
	deps.Portfolio = service.NewPortfolioService(
		cfg.Portfolio.InitialCash,
		deps.Market,
		deps.SignalBus,
		deps.Notifier,
		logger,
	)
	deps.Bot = service.NewBotService(
		deps.Signals,
		registry,
		deps.Portfolio,
		deps.Notifier,
		deps.SignalBus,
		cfg.Bot.Strategy,
		cfg.Bot.MinConfidence,
		logger,
	)

	return deps, cleanup, nil
}
