package domain

import "time"

// SignalKind is a strategy's recommendation for a symbol.
type SignalKind string

const (
	SignalBuy         SignalKind = "BUY"
	SignalSell        SignalKind = "SELL"
	SignalHoldBullish SignalKind = "HOLD_BULLISH"
	SignalHoldBearish SignalKind = "HOLD_BEARISH"
)

// Signal is the result of evaluating one strategy against a symbol's
// price history. Confidence is always in [0, 1]; Price is the reference
// price the signal was computed at (the latest close of the history).
type Signal struct {
	Symbol     string             `json:"symbol"`
	Kind       SignalKind         `json:"signal"`
	Strategy   string             `json:"strategy"`
	Confidence float64            `json:"confidence"`
	Price      float64            `json:"current_price"`
	Timestamp  time.Time          `json:"timestamp"`
	Details    map[string]float64 `json:"details"`
}

// StrategyInfo describes a registered strategy for listing APIs.
type StrategyInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
