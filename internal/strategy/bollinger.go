package strategy

import (
	"fmt"

	"github.com/quantfall/stockbot/internal/domain"
)

// bollingerBands buys when price touches the lower band and sells when
// it touches the upper band.
type bollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates the Bollinger Bands strategy with its
// standard 20-period window and 2-sigma bands.
func NewBollingerBands() Strategy {
	return &bollingerBands{period: 20, stdDev: 2}
}

func (s *bollingerBands) Name() string { return "bollinger_bands" }

func (s *bollingerBands) Info() domain.StrategyInfo {
	return domain.StrategyInfo{
		Name:        "Bollinger Bands",
		Description: "Bollinger Bands strategy. Generates buy signal when price touches lower band, sell signal when price touches upper band.",
		Parameters: map[string]any{
			"period":  s.period,
			"std_dev": int(s.stdDev),
		},
	}
}

func (s *bollingerBands) Evaluate(symbol string, bars []domain.Candle) (domain.Signal, error) {
	if len(bars) < s.period {
		return domain.Signal{}, fmt.Errorf("bollinger_bands: need %d bars, have %d: %w",
			s.period, len(bars), domain.ErrInsufficientHistory)
	}

	prices := closes(bars)
	mean := sma(prices, s.period)

	n := len(prices)
	mid := mean[n-1]
	sigma := sampleStd(prices, s.period)
	upper := mid + sigma*s.stdDev
	lower := mid - sigma*s.stdDev
	price := prices[n-1]

	var kind domain.SignalKind
	var confidence float64
	switch {
	case price <= lower:
		kind = domain.SignalBuy
		confidence = 0.7
	case price >= upper:
		kind = domain.SignalSell
		confidence = 0.7
	case price < mid:
		kind = domain.SignalHoldBullish
		confidence = 0.4
	default:
		kind = domain.SignalHoldBearish
		confidence = 0.4
	}

	details := map[string]float64{
		"upper_band":  round2(upper),
		"lower_band":  round2(lower),
		"middle_band": round2(mid),
	}
	return newSignal(symbol, kind, "Bollinger Bands", confidence, price, details), nil
}
