package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfall/stockbot/internal/domain"
)

func TestQuoteCacheRoundTrip(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	ctx := context.Background()

	quote := domain.Quote{Symbol: "AAPL", CurrentPrice: 150.5, Timestamp: time.Now().UTC()}
	require.NoError(t, qc.Set(ctx, quote))

	got, err := qc.Get(ctx, "aapl")
	require.NoError(t, err)
	require.Equal(t, quote.CurrentPrice, got.CurrentPrice)
}

func TestQuoteCacheMissIsNoData(t *testing.T) {
	qc := NewQuoteCache(time.Minute)

	_, err := qc.Get(context.Background(), "MSFT")
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestQuoteCacheExpiresAndEvicts(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	qc.now = func() time.Time { return clock }

	require.NoError(t, qc.Set(ctx, domain.Quote{Symbol: "AAPL", CurrentPrice: 150}))

	clock = clock.Add(59 * time.Second)
	_, err := qc.Get(ctx, "AAPL")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Second)
	_, err = qc.Get(ctx, "AAPL")
	require.ErrorIs(t, err, domain.ErrNoData)

	// The entry was evicted, not just hidden.
	qc.mu.RLock()
	_, ok := qc.entries["AAPL"]
	qc.mu.RUnlock()
	require.False(t, ok)
}

func TestQuoteCacheZeroTTLNeverExpires(t *testing.T) {
	qc := NewQuoteCache(0)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	qc.now = func() time.Time { return clock }

	require.NoError(t, qc.Set(ctx, domain.Quote{Symbol: "AAPL", CurrentPrice: 150}))
	clock = clock.Add(24 * time.Hour)

	_, err := qc.Get(ctx, "AAPL")
	require.NoError(t, err)
}

func TestSignalBusDeliversToSubscribers(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "trades")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "trades", []byte(`{"event":"trade"}`)))

	select {
	case msg := <-ch:
		require.JSONEq(t, `{"event":"trade"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestSignalBusChannelIsolation(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trades, err := bus.Subscribe(ctx, "trades")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "signals", []byte("x")))

	select {
	case <-trades:
		t.Fatal("message leaked across channels")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignalBusWildcardReceivesEverything(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := bus.Subscribe(ctx, "*")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "signals", []byte("a")))
	require.NoError(t, bus.Publish(ctx, "trades", []byte("b")))

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-all:
			got = append(got, string(msg))
		case <-time.After(time.Second):
			t.Fatal("missing wildcard delivery")
		}
	}
	require.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestSignalBusUnsubscribeOnCancel(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "trades")
	require.NoError(t, err)

	cancel()

	// The subscriber channel closes once the cancellation is observed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("subscriber channel never closed")
		}
	}
}

func TestSignalBusPublishNeverBlocks(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := bus.Subscribe(ctx, "trades")
	require.NoError(t, err)

	// Overflow the subscriber buffer; Publish must drop, not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(ctx, "trades", []byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
