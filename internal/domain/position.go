package domain

// Position is a currently held lot: quantity and the quantity-weighted
// average purchase price. A position exists only while Quantity > 0.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
}

// ValuedPosition is a position marked to the latest available price. When
// no quote is available the position is marked to its cost basis and
// MarkToCost is set.
type ValuedPosition struct {
	Symbol               string  `json:"symbol"`
	Quantity             int64   `json:"quantity"`
	AveragePrice         float64 `json:"average_price"`
	CurrentPrice         float64 `json:"current_price"`
	MarketValue          float64 `json:"market_value"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`
	MarkToCost           bool    `json:"mark_to_cost,omitempty"`
}

// Portfolio is a valued snapshot of the whole ledger.
type Portfolio struct {
	CashBalance        float64          `json:"cash_balance"`
	TotalValue         float64          `json:"total_value"`
	Positions          []ValuedPosition `json:"positions"`
	TotalUnrealizedPnL float64          `json:"total_unrealized_pnl"`
}
