package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfall/stockbot/internal/cache/memory"
	"github.com/quantfall/stockbot/internal/domain"
	"github.com/quantfall/stockbot/internal/strategy"
)

func risingBars(n int) []domain.Candle {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = domain.Candle{
			Date: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}
	return out
}

func newSignalFixture(bars map[string][]domain.Candle, bus domain.SignalBus) *SignalService {
	provider := &fakeProvider{bars: bars}
	market := NewMarketService(provider, nil, testLogger())
	return NewSignalService(market, strategy.NewDefaultRegistry(), bus, "3mo", "1d", testLogger())
}

func TestSignalEvaluatesNamedStrategy(t *testing.T) {
	svc := newSignalFixture(map[string][]domain.Candle{"AAPL": risingBars(60)}, nil)

	sig, err := svc.Signal(context.Background(), "aapl", "rsi")
	require.NoError(t, err)
	require.Equal(t, "AAPL", sig.Symbol)
	require.Equal(t, "RSI", sig.Strategy)
	require.Equal(t, domain.SignalSell, sig.Kind)
}

func TestSignalUnknownStrategy(t *testing.T) {
	svc := newSignalFixture(map[string][]domain.Candle{"AAPL": risingBars(60)}, nil)

	_, err := svc.Signal(context.Background(), "AAPL", "momentum")
	require.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

func TestSignalNoHistoryIsNoData(t *testing.T) {
	svc := newSignalFixture(nil, nil)

	_, err := svc.Signal(context.Background(), "AAPL", "sma_crossover")
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestSignalThinHistoryIsRefused(t *testing.T) {
	svc := newSignalFixture(map[string][]domain.Candle{"AAPL": risingBars(29)}, nil)

	_, err := svc.Signal(context.Background(), "AAPL", "sma_crossover")
	require.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestSignalPublishesOnBus(t *testing.T) {
	bus := memory.NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "signals")
	require.NoError(t, err)

	svc := newSignalFixture(map[string][]domain.Candle{"AAPL": risingBars(60)}, bus)
	_, err = svc.Signal(ctx, "AAPL", "rsi")
	require.NoError(t, err)

	select {
	case payload := <-ch:
		var event struct {
			Event  string        `json:"event"`
			Signal domain.Signal `json:"signal"`
		}
		require.NoError(t, json.Unmarshal(payload, &event))
		require.Equal(t, "signal", event.Event)
		require.Equal(t, "AAPL", event.Signal.Symbol)
	case <-time.After(time.Second):
		t.Fatal("no signal event published")
	}
}

func TestStrategiesListsAllBuiltIns(t *testing.T) {
	svc := newSignalFixture(nil, nil)
	infos := svc.Strategies()
	require.Len(t, infos, 4)
}
