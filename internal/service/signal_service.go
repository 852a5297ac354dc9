package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantfall/stockbot/internal/domain"
	"github.com/quantfall/stockbot/internal/strategy"
)

// SignalService evaluates registered strategies against provider price
// history and publishes resulting signals on the bus.
type SignalService struct {
	market   *MarketService
	registry *strategy.Registry
	bus      domain.SignalBus
	period   string
	interval string
	logger   *slog.Logger
}

// NewSignalService creates a SignalService. period/interval control the
// history window fetched per evaluation (e.g. "3mo", "1d"). bus may be
// nil to disable event publishing.
func NewSignalService(
	market *MarketService,
	registry *strategy.Registry,
	bus domain.SignalBus,
	period, interval string,
	logger *slog.Logger,
) *SignalService {
	return &SignalService{
		market:   market,
		registry: registry,
		bus:      bus,
		period:   period,
		interval: interval,
		logger:   logger.With(slog.String("component", "signal_service")),
	}
}

// Registry exposes the strategy registry for callers that validate
// strategy names.
func (s *SignalService) Registry() *strategy.Registry {
	return s.registry
}

// Strategies lists all registered strategies.
func (s *SignalService) Strategies() []domain.StrategyInfo {
	return s.registry.ListInfo()
}

// Signal evaluates one strategy for one symbol. It returns
// domain.ErrUnknownStrategy for unregistered names, domain.ErrNoData
// when the provider has nothing for the symbol, and
// domain.ErrInsufficientHistory when fewer than strategy.MinHistory bars
// are available.
func (s *SignalService) Signal(ctx context.Context, symbol, strategyName string) (domain.Signal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	strat, err := s.registry.Get(strategyName)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("signal: %s: %w", symbol, err)
	}

	bars, err := s.market.History(ctx, symbol, s.period, s.interval)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("signal: %s: %w", symbol, err)
	}
	if len(bars) < strategy.MinHistory {
		return domain.Signal{}, fmt.Errorf("signal: %s: %d bars < %d: %w",
			symbol, len(bars), strategy.MinHistory, domain.ErrInsufficientHistory)
	}

	sig, err := strat.Evaluate(symbol, bars)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("signal: %s: %w", symbol, err)
	}

	s.publish(ctx, sig)
	return sig, nil
}

// publish emits the signal on the "signals" channel; failures are logged
// and dropped, evaluation results never depend on bus health.
func (s *SignalService) publish(ctx context.Context, sig domain.Signal) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":  "signal",
		"signal": sig,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, "signals", payload); err != nil {
		s.logger.WarnContext(ctx, "publish signal event failed",
			slog.String("symbol", sig.Symbol),
			slog.String("error", err.Error()),
		)
	}
}
