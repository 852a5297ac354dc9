package strategy

import (
	"fmt"

	"github.com/quantfall/stockbot/internal/domain"
)

// rsiStrategy buys when the Relative Strength Index drops below the
// oversold level and sells when it rises above the overbought level.
type rsiStrategy struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSI creates the RSI strategy with its standard 14-period window and
// 30/70 levels.
func NewRSI() Strategy {
	return &rsiStrategy{period: 14, oversold: 30, overbought: 70}
}

func (s *rsiStrategy) Name() string { return "rsi" }

func (s *rsiStrategy) Info() domain.StrategyInfo {
	return domain.StrategyInfo{
		Name:        "RSI",
		Description: "Relative Strength Index strategy. Generates buy signal when RSI is below oversold level (30), and sell signal when RSI is above overbought level (70).",
		Parameters: map[string]any{
			"period":     s.period,
			"oversold":   int(s.oversold),
			"overbought": int(s.overbought),
		},
	}
}

// Evaluate computes RSI from simple rolling means of gains and losses.
// When the average loss over the window is zero the RS ratio is
// unbounded, so RSI is pinned to its limit of 100 (maximal overbought,
// a sell); a window with neither gains nor losses pins RSI to the
// neutral 50 instead.
func (s *rsiStrategy) Evaluate(symbol string, bars []domain.Candle) (domain.Signal, error) {
	if len(bars) < s.period+1 {
		return domain.Signal{}, fmt.Errorf("rsi: need %d bars, have %d: %w",
			s.period+1, len(bars), domain.ErrInsufficientHistory)
	}

	prices := closes(bars)
	avgGain, avgLoss := avgGainLoss(prices, s.period)

	var rsi float64
	switch {
	case avgLoss == 0 && avgGain == 0:
		rsi = 50
	case avgLoss == 0:
		rsi = 100
	default:
		rs := avgGain / avgLoss
		rsi = 100 - 100/(1+rs)
	}

	var kind domain.SignalKind
	var confidence float64
	switch {
	case rsi < s.oversold:
		kind = domain.SignalBuy
		confidence = 0.5 + (s.oversold-rsi)/s.oversold*0.4
	case rsi > s.overbought:
		kind = domain.SignalSell
		confidence = 0.5 + (rsi-s.overbought)/(100-s.overbought)*0.4
	case rsi < 50:
		kind = domain.SignalHoldBullish
		confidence = 0.4
	default:
		kind = domain.SignalHoldBearish
		confidence = 0.4
	}

	details := map[string]float64{
		"rsi":              round2(rsi),
		"oversold_level":   s.oversold,
		"overbought_level": s.overbought,
	}
	return newSignal(symbol, kind, "RSI", confidence, prices[len(prices)-1], details), nil
}
