package strategy

import (
	"math"
	"time"

	"github.com/quantfall/stockbot/internal/domain"
)

// closes extracts the closing-price series from chronological bars.
func closes(bars []domain.Candle) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// sma returns the rolling mean over window p, aligned to the input length
// with NaNs for the warmup prefix.
func sma(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// emaSpan returns the exponential moving average with smoothing
// 2/(span+1), seeded at the first observation so the recursion matches a
// span-parameterized EMA over the full series.
func emaSpan(x []float64, span int) []float64 {
	if span <= 0 || len(x) == 0 {
		return nil
	}
	k := 2.0 / float64(span+1)
	out := make([]float64, len(x))
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// sampleStd returns the sample standard deviation (n-1 divisor) of the
// last p values of x. It returns NaN when fewer than p values exist or
// p < 2.
func sampleStd(x []float64, p int) float64 {
	if p < 2 || len(x) < p {
		return math.NaN()
	}
	window := x[len(x)-p:]

	var mean float64
	for _, v := range window {
		mean += v
	}
	mean /= float64(p)

	var sumSq float64
	for _, v := range window {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(p-1))
}

// avgGainLoss returns the rolling means of positive and negative closing
// deltas over the last p deltas, the core of the RSI computation.
func avgGainLoss(x []float64, p int) (avgGain, avgLoss float64) {
	if p <= 0 || len(x) < p+1 {
		return math.NaN(), math.NaN()
	}
	for i := len(x) - p; i < len(x); i++ {
		delta := x[i] - x[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	return avgGain / float64(p), avgLoss / float64(p)
}

// round2 rounds to two decimal places for presentation values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// newSignal assembles a Signal, capping confidence at 1.0 and rounding
// presentation fields to two decimals.
func newSignal(symbol string, kind domain.SignalKind, strategyName string, confidence, price float64, details map[string]float64) domain.Signal {
	return domain.Signal{
		Symbol:     symbol,
		Kind:       kind,
		Strategy:   strategyName,
		Confidence: round2(math.Min(confidence, 1.0)),
		Price:      round2(price),
		Timestamp:  time.Now().UTC(),
		Details:    details,
	}
}
