package domain

import "context"

// QuoteProvider retrieves market data for a symbol. Implementations must
// return ErrNoData (possibly wrapped) when the provider has nothing for
// the symbol, never zero-valued quotes.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	History(ctx context.Context, symbol, period, interval string) ([]Candle, error)
}

// QuoteCache provides fast access to recently fetched quotes. Get returns
// ErrNoData when the symbol is absent or the entry has expired.
type QuoteCache interface {
	Set(ctx context.Context, quote Quote) error
	Get(ctx context.Context, symbol string) (Quote, error)
}

// SignalBus provides pub/sub fan-out of bot events (signals, trades,
// status changes) to interested consumers such as the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
