package strategy

import (
	"fmt"

	"github.com/quantfall/stockbot/internal/domain"
)

// smaCrossover generates a buy signal when the short-term rolling mean
// crosses above the long-term one, and a sell signal when it crosses
// below. Without a fresh cross it reports the current side of the spread
// as a hold.
type smaCrossover struct {
	shortPeriod int
	longPeriod  int
}

// NewSMACrossover creates the SMA crossover strategy with its standard
// 10/30 periods.
func NewSMACrossover() Strategy {
	return &smaCrossover{shortPeriod: 10, longPeriod: 30}
}

func (s *smaCrossover) Name() string { return "sma_crossover" }

func (s *smaCrossover) Info() domain.StrategyInfo {
	return domain.StrategyInfo{
		Name:        "SMA Crossover",
		Description: "Simple Moving Average Crossover strategy. Generates buy signal when short-term SMA crosses above long-term SMA, and sell signal when it crosses below.",
		Parameters: map[string]any{
			"short_period": s.shortPeriod,
			"long_period":  s.longPeriod,
		},
	}
}

func (s *smaCrossover) Evaluate(symbol string, bars []domain.Candle) (domain.Signal, error) {
	if len(bars) < s.longPeriod {
		return domain.Signal{}, fmt.Errorf("sma_crossover: need %d bars, have %d: %w",
			s.longPeriod, len(bars), domain.ErrInsufficientHistory)
	}

	prices := closes(bars)
	short := sma(prices, s.shortPeriod)
	long := sma(prices, s.longPeriod)

	n := len(prices)
	curShort, curLong := short[n-1], long[n-1]
	prevShort, prevLong := short[n-2], long[n-2]

	// NaN warmup values compare false on every branch, so with exactly
	// longPeriod bars the previous pair cannot register a cross and the
	// signal falls through to a hold.
	var kind domain.SignalKind
	var confidence float64
	switch {
	case prevShort <= prevLong && curShort > curLong:
		kind = domain.SignalBuy
		confidence = min(0.9, 0.5+(curShort-curLong)/curLong*10)
	case prevShort >= prevLong && curShort < curLong:
		kind = domain.SignalSell
		confidence = min(0.9, 0.5+(curLong-curShort)/curLong*10)
	case curShort > curLong:
		kind = domain.SignalHoldBullish
		confidence = 0.5 + (curShort-curLong)/curLong*5
	default:
		kind = domain.SignalHoldBearish
		confidence = 0.5 + (curLong-curShort)/curLong*5
	}

	details := map[string]float64{
		"short_sma":    round2(curShort),
		"long_sma":     round2(curLong),
		"short_period": float64(s.shortPeriod),
		"long_period":  float64(s.longPeriod),
	}
	return newSignal(symbol, kind, "SMA Crossover", confidence, prices[n-1], details), nil
}
