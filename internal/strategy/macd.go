package strategy

import (
	"fmt"

	"github.com/quantfall/stockbot/internal/domain"
)

// macdStrategy signals on the MACD line crossing its signal line.
type macdStrategy struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates the MACD strategy with its standard 12/26/9 periods.
func NewMACD() Strategy {
	return &macdStrategy{fastPeriod: 12, slowPeriod: 26, signalPeriod: 9}
}

func (s *macdStrategy) Name() string { return "macd" }

func (s *macdStrategy) Info() domain.StrategyInfo {
	return domain.StrategyInfo{
		Name:        "MACD",
		Description: "Moving Average Convergence Divergence strategy. Generates signals based on MACD line crossing signal line.",
		Parameters: map[string]any{
			"fast_period":   s.fastPeriod,
			"slow_period":   s.slowPeriod,
			"signal_period": s.signalPeriod,
		},
	}
}

func (s *macdStrategy) Evaluate(symbol string, bars []domain.Candle) (domain.Signal, error) {
	if len(bars) < s.slowPeriod+1 {
		return domain.Signal{}, fmt.Errorf("macd: need %d bars, have %d: %w",
			s.slowPeriod+1, len(bars), domain.ErrInsufficientHistory)
	}

	prices := closes(bars)
	fast := emaSpan(prices, s.fastPeriod)
	slow := emaSpan(prices, s.slowPeriod)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine := emaSpan(macdLine, s.signalPeriod)

	n := len(prices)
	curMACD, curSignal := macdLine[n-1], signalLine[n-1]
	prevMACD, prevSignal := macdLine[n-2], signalLine[n-2]

	var kind domain.SignalKind
	var confidence float64
	switch {
	case prevMACD <= prevSignal && curMACD > curSignal:
		kind = domain.SignalBuy
		confidence = 0.7
	case prevMACD >= prevSignal && curMACD < curSignal:
		kind = domain.SignalSell
		confidence = 0.7
	case curMACD > curSignal:
		kind = domain.SignalHoldBullish
		confidence = 0.5
	default:
		kind = domain.SignalHoldBearish
		confidence = 0.5
	}

	details := map[string]float64{
		"macd":        round2(curMACD),
		"signal_line": round2(curSignal),
		"histogram":   round2(curMACD - curSignal),
	}
	return newSignal(symbol, kind, "MACD", confidence, prices[n-1], details), nil
}
