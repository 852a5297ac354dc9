package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfall/stockbot/internal/cache/memory"
	"github.com/quantfall/stockbot/internal/domain"
)

// fakeProvider serves canned quotes/history and counts upstream hits.
type fakeProvider struct {
	quotes     map[string]domain.Quote
	bars       map[string][]domain.Candle
	quoteCalls int
}

func (f *fakeProvider) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	f.quoteCalls++
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, domain.ErrNoData
	}
	return q, nil
}

func (f *fakeProvider) History(_ context.Context, symbol, _, _ string) ([]domain.Candle, error) {
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, domain.ErrNoData
	}
	return bars, nil
}

func TestQuoteServedFromCacheOnSecondCall(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]domain.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 150, Timestamp: time.Now().UTC()},
	}}
	market := NewMarketService(provider, memory.NewQuoteCache(time.Minute), testLogger())
	ctx := context.Background()

	q1, err := market.Quote(ctx, "aapl")
	require.NoError(t, err)
	require.Equal(t, 150.0, q1.CurrentPrice)
	require.Equal(t, 1, provider.quoteCalls)

	q2, err := market.Quote(ctx, "AAPL")
	require.NoError(t, err)
	require.Equal(t, q1.CurrentPrice, q2.CurrentPrice)
	require.Equal(t, 1, provider.quoteCalls, "second lookup must hit the cache")
}

func TestQuoteUnknownSymbolIsNoData(t *testing.T) {
	market := NewMarketService(&fakeProvider{}, nil, testLogger())

	_, err := market.Quote(context.Background(), "NOPE")
	require.ErrorIs(t, err, domain.ErrNoData)

	_, err = market.Quote(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestQuoteProviderErrorsNormalizeToNoData(t *testing.T) {
	provider := &fakeProvider{}
	market := NewMarketService(provider, nil, testLogger())

	_, err := market.Quote(context.Background(), "AAPL")
	require.ErrorIs(t, err, domain.ErrNoData)
	require.False(t, errors.Is(err, domain.ErrInsufficientHistory))
}

func TestCurrentPriceUsesQuote(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]domain.Quote{
		"MSFT": {Symbol: "MSFT", CurrentPrice: 410.25},
	}}
	market := NewMarketService(provider, nil, testLogger())

	price, err := market.CurrentPrice(context.Background(), "msft")
	require.NoError(t, err)
	require.Equal(t, 410.25, price)
}

func TestHistoryEmptyIsNoData(t *testing.T) {
	provider := &fakeProvider{bars: map[string][]domain.Candle{"AAPL": {}}}
	market := NewMarketService(provider, nil, testLogger())

	_, err := market.History(context.Background(), "AAPL", "3mo", "1d")
	require.ErrorIs(t, err, domain.ErrNoData)
}
