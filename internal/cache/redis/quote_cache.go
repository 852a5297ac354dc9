package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantfall/stockbot/internal/domain"
	"github.com/redis/go-redis/v9"
)

// QuoteCache implements domain.QuoteCache using Redis string keys with a
// TTL. Each quote is stored as JSON at key "quote:{SYMBOL}"; expiry is
// handled by Redis so Get never returns stale entries.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache backed by the given Client. Entries
// expire after ttl; a non-positive ttl disables expiry.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

// Set stores the quote under its symbol key.
func (qc *QuoteCache) Set(ctx context.Context, quote domain.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("redis: marshal quote %s: %w", quote.Symbol, err)
	}

	var ttl time.Duration
	if qc.ttl > 0 {
		ttl = qc.ttl
	}
	if err := qc.rdb.Set(ctx, quoteKey(quote.Symbol), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", quote.Symbol, err)
	}
	return nil
}

// Get retrieves the cached quote for a symbol. It returns
// domain.ErrNoData when the key does not exist or has expired.
func (qc *QuoteCache) Get(ctx context.Context, symbol string) (domain.Quote, error) {
	payload, err := qc.rdb.Get(ctx, quoteKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Quote{}, domain.ErrNoData
		}
		return domain.Quote{}, fmt.Errorf("redis: get quote %s: %w", symbol, err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(payload, &quote); err != nil {
		return domain.Quote{}, fmt.Errorf("redis: decode quote %s: %w", symbol, err)
	}
	return quote, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
