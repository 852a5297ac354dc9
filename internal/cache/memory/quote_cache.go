// Package memory provides in-process implementations of the domain cache
// and bus interfaces, used when Redis is disabled.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quantfall/stockbot/internal/domain"
)

// QuoteCache implements domain.QuoteCache with a mutex-guarded map and
// per-entry expiry.
type QuoteCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]quoteEntry
	now     func() time.Time
}

type quoteEntry struct {
	quote     domain.Quote
	fetchedAt time.Time
}

// NewQuoteCache creates a QuoteCache whose entries expire after ttl. A
// non-positive ttl disables expiry.
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		ttl:     ttl,
		entries: make(map[string]quoteEntry),
		now:     time.Now,
	}
}

// Set stores the quote under its upper-cased symbol.
func (qc *QuoteCache) Set(_ context.Context, quote domain.Quote) error {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.entries[strings.ToUpper(quote.Symbol)] = quoteEntry{
		quote:     quote,
		fetchedAt: qc.now(),
	}
	return nil
}

// Get retrieves a cached quote. It returns domain.ErrNoData when the
// symbol is absent or the entry has expired; expired entries are evicted.
func (qc *QuoteCache) Get(_ context.Context, symbol string) (domain.Quote, error) {
	key := strings.ToUpper(symbol)

	qc.mu.RLock()
	entry, ok := qc.entries[key]
	qc.mu.RUnlock()
	if !ok {
		return domain.Quote{}, domain.ErrNoData
	}

	if qc.ttl > 0 && qc.now().Sub(entry.fetchedAt) >= qc.ttl {
		qc.mu.Lock()
		delete(qc.entries, key)
		qc.mu.Unlock()
		return domain.Quote{}, domain.ErrNoData
	}
	return entry.quote, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
