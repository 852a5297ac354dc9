// Package strategy implements the technical trading strategies and the
// registry that dispatches them by name.
package strategy

import (
	"github.com/quantfall/stockbot/internal/domain"
)

// MinHistory is the minimum number of bars required before any strategy
// is evaluated.
const MinHistory = 30

// Strategy defines the contract for signal-generating strategies. All
// implementations are pure: Evaluate depends only on its inputs and the
// strategy's fixed parameters.
type Strategy interface {
	// Name returns the registry key, e.g. "sma_crossover".
	Name() string
	// Info describes the strategy for listing APIs.
	Info() domain.StrategyInfo
	// Evaluate computes a signal from chronological price history. The
	// slice must hold at least MinHistory bars.
	Evaluate(symbol string, bars []domain.Candle) (domain.Signal, error)
}
