// Package service implements the business logic of the paper-trading
// bot: market data access, signal evaluation, the portfolio ledger, and
// the autonomous bot controller.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantfall/stockbot/internal/domain"
)

// MarketService serves quotes and price history from the quote provider,
// caching quote snapshots. Provider failures are normalized to
// domain.ErrNoData so a provider outage degrades to "no data" for the
// affected symbol instead of failing a whole poll.
type MarketService struct {
	provider domain.QuoteProvider
	cache    domain.QuoteCache
	logger   *slog.Logger
}

// NewMarketService creates a MarketService. cache may be nil to disable
// quote caching.
func NewMarketService(provider domain.QuoteProvider, cache domain.QuoteCache, logger *slog.Logger) *MarketService {
	return &MarketService{
		provider: provider,
		cache:    cache,
		logger:   logger.With(slog.String("component", "market_service")),
	}
}

// Quote returns the latest snapshot for a symbol, from cache when fresh.
func (s *MarketService) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Quote{}, fmt.Errorf("market: empty symbol: %w", domain.ErrNoData)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, symbol); err == nil {
			return cached, nil
		} else if !errors.Is(err, domain.ErrNoData) {
			s.logger.WarnContext(ctx, "quote cache read failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	quote, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, s.noData(ctx, "quote", symbol, err)
	}
	quote.Symbol = symbol

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote); err != nil {
			s.logger.WarnContext(ctx, "quote cache write failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
	return quote, nil
}

// CurrentPrice returns the latest traded price for a symbol.
func (s *MarketService) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := s.Quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.CurrentPrice, nil
}

// History returns chronological OHLCV bars for a symbol.
func (s *MarketService) History(ctx context.Context, symbol, period, interval string) ([]domain.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("market: empty symbol: %w", domain.ErrNoData)
	}

	bars, err := s.provider.History(ctx, symbol, period, interval)
	if err != nil {
		return nil, s.noData(ctx, "history", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("market: history %s: %w", symbol, domain.ErrNoData)
	}
	return bars, nil
}

// noData logs the provider failure and returns an ErrNoData-classified
// error, keeping transport details out of the caller's control flow.
func (s *MarketService) noData(ctx context.Context, op, symbol string, cause error) error {
	if !errors.Is(cause, domain.ErrNoData) {
		s.logger.WarnContext(ctx, "quote provider failed",
			slog.String("op", op),
			slog.String("symbol", symbol),
			slog.String("error", cause.Error()),
		)
		return fmt.Errorf("market: %s %s: %w", op, symbol, domain.ErrNoData)
	}
	return fmt.Errorf("market: %s %s: %w", op, symbol, cause)
}
