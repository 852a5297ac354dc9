package domain

import "time"

// BotStatus is a summary of the bot controller's current state. Strategy
// is populated only while the bot is running; TotalTrades is derived from
// the portfolio ledger's trade log.
type BotStatus struct {
	Running        bool       `json:"is_running"`
	Strategy       string     `json:"strategy,omitempty"`
	WatchedSymbols []string   `json:"watched_symbols"`
	LastCheck      *time.Time `json:"last_check,omitempty"`
	TotalTrades    int        `json:"total_trades"`
}

// CheckResult is the outcome of one symbol's evaluation during a bot
// signal check. Trade is set only when an order was auto-executed.
type CheckResult struct {
	Symbol        string             `json:"symbol"`
	Signal        SignalKind         `json:"signal"`
	Confidence    float64            `json:"confidence"`
	Price         float64            `json:"current_price"`
	Details       map[string]float64 `json:"details"`
	TradeExecuted bool               `json:"trade_executed"`
	Trade         *Trade             `json:"trade,omitempty"`
}
