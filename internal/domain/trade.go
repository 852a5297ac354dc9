package domain

import "time"

// TradeAction is the direction of an order.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Valid reports whether a is a known trade action.
func (a TradeAction) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// TradeRequest is an order submitted to the portfolio ledger. Price is
// optional; when zero the ledger resolves the execution price from the
// quote provider.
type TradeRequest struct {
	Symbol   string      `json:"symbol"`
	Action   TradeAction `json:"action"`
	Quantity int64       `json:"quantity"`
	Price    float64     `json:"price,omitempty"`
}

// Trade is an executed order. Trades are immutable once appended to the
// ledger's trade log; Price and TotalValue are rounded to cents.
type Trade struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Action     TradeAction `json:"action"`
	Quantity   int64       `json:"quantity"`
	Price      float64     `json:"price"`
	TotalValue float64     `json:"total_value"`
	Timestamp  time.Time   `json:"timestamp"`
}
