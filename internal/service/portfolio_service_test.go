package service

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfall/stockbot/internal/domain"
)

// fakePricer serves prices from a fixed map and fails with
// domain.ErrNoData for anything else.
type fakePricer struct {
	prices map[string]float64
	calls  int
}

func (f *fakePricer) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	f.calls++
	p, ok := f.prices[symbol]
	if !ok {
		return 0, domain.ErrNoData
	}
	return p, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(cash float64, prices map[string]float64) (*PortfolioService, *fakePricer) {
	pricer := &fakePricer{prices: prices}
	return NewPortfolioService(cash, pricer, nil, nil, testLogger()), pricer
}

func TestBuyResolvesQuoteAndDebitsCash(t *testing.T) {
	ledger, _ := newTestLedger(100_000, map[string]float64{"AAPL": 150})

	trade, err := ledger.ExecuteTrade(context.Background(), domain.TradeRequest{
		Symbol:   "aapl",
		Action:   domain.ActionBuy,
		Quantity: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "AAPL", trade.Symbol)
	require.Equal(t, 150.0, trade.Price)
	require.Equal(t, 1500.0, trade.TotalValue)
	require.NotEmpty(t, trade.ID)

	require.Equal(t, 98_500.0, ledger.CashBalance())
	pos, ok := ledger.Position("AAPL")
	require.True(t, ok)
	require.Equal(t, int64(10), pos.Quantity)
	require.Equal(t, 150.0, pos.AveragePrice)
}

func TestBuyAveragesCostBasis(t *testing.T) {
	ledger, _ := newTestLedger(100_000, nil)
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 100,
	})
	require.NoError(t, err)
	_, err = ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 200,
	})
	require.NoError(t, err)

	pos, ok := ledger.Position("AAPL")
	require.True(t, ok)
	require.Equal(t, int64(20), pos.Quantity)
	require.Equal(t, 150.0, pos.AveragePrice)
}

func TestInsufficientFundsLeavesLedgerUntouched(t *testing.T) {
	ledger, _ := newTestLedger(1_000, nil)

	_, err := ledger.ExecuteTrade(context.Background(), domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 11, Price: 100,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.Equal(t, 1_000.0, ledger.CashBalance())
	_, ok := ledger.Position("AAPL")
	require.False(t, ok)
	require.Zero(t, ledger.TradeCount())
}

func TestSellDownRemovesPosition(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 100,
	})
	require.NoError(t, err)

	_, err = ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionSell, Quantity: 10, Price: 120,
	})
	require.NoError(t, err)

	require.Equal(t, 10_200.0, ledger.CashBalance())
	_, ok := ledger.Position("AAPL")
	require.False(t, ok)

	// The position is gone, so another sell must be refused.
	_, err = ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionSell, Quantity: 1, Price: 120,
	})
	require.ErrorIs(t, err, domain.ErrNoPosition)
}

func TestSellMoreThanHeldIsRefused(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 5, Price: 100,
	})
	require.NoError(t, err)

	_, err = ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionSell, Quantity: 6, Price: 100,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientShares)

	pos, ok := ledger.Position("AAPL")
	require.True(t, ok)
	require.Equal(t, int64(5), pos.Quantity)
	require.Equal(t, 9_500.0, ledger.CashBalance())
}

func TestUnpricedOrderIsRefused(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil) // pricer knows no symbols

	_, err := ledger.ExecuteTrade(context.Background(), domain.TradeRequest{
		Symbol: "GME", Action: domain.ActionBuy, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrUnpricedOrder)
	require.Equal(t, 10_000.0, ledger.CashBalance())
}

func TestInvalidOrdersAreRefused(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	cases := []domain.TradeRequest{
		{Symbol: "", Action: domain.ActionBuy, Quantity: 1, Price: 100},
		{Symbol: "AAPL", Action: "short", Quantity: 1, Price: 100},
		{Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 0, Price: 100},
		{Symbol: "AAPL", Action: domain.ActionBuy, Quantity: -5, Price: 100},
		{Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 1, Price: -10},
	}
	for _, req := range cases {
		_, err := ledger.ExecuteTrade(ctx, req)
		require.ErrorIs(t, err, domain.ErrInvalidOrder, "%+v", req)
	}
	require.Zero(t, ledger.TradeCount())
}

func TestPortfolioSnapshotValuesPositions(t *testing.T) {
	ledger, _ := newTestLedger(100_000, map[string]float64{"AAPL": 180, "MSFT": 400})
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "MSFT", Action: domain.ActionBuy, Quantity: 5, Price: 380,
	})
	require.NoError(t, err)
	_, err = ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 150,
	})
	require.NoError(t, err)

	snap := ledger.Portfolio(ctx)
	require.Equal(t, 96_600.0, snap.CashBalance)
	require.Len(t, snap.Positions, 2)

	// Sorted by symbol.
	require.Equal(t, "AAPL", snap.Positions[0].Symbol)
	require.Equal(t, "MSFT", snap.Positions[1].Symbol)

	aapl := snap.Positions[0]
	require.Equal(t, 180.0, aapl.CurrentPrice)
	require.Equal(t, 1_800.0, aapl.MarketValue)
	require.Equal(t, 300.0, aapl.UnrealizedPnL)
	require.Equal(t, 20.0, aapl.UnrealizedPnLPercent)
	require.False(t, aapl.MarkToCost)

	require.Equal(t, 96_600.0+1_800.0+2_000.0, snap.TotalValue)
	require.Equal(t, 300.0+100.0, snap.TotalUnrealizedPnL)
}

func TestPortfolioSnapshotMarksToCostWithoutQuote(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 100,
	})
	require.NoError(t, err)

	snap := ledger.Portfolio(ctx)
	require.Len(t, snap.Positions, 1)
	pos := snap.Positions[0]
	require.True(t, pos.MarkToCost)
	require.Equal(t, 100.0, pos.CurrentPrice)
	require.Equal(t, 0.0, pos.UnrealizedPnL)
	require.Equal(t, 10_000.0, snap.TotalValue)
}

// recordingNotifier captures every Notify call for assertions.
type recordingNotifier struct {
	events []string
	titles []string
}

func (n *recordingNotifier) Notify(_ context.Context, event, title, _ string) error {
	n.events = append(n.events, event)
	n.titles = append(n.titles, title)
	return nil
}

func TestResetClearsEverything(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
		Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 10, Price: 100,
	})
	require.NoError(t, err)

	ledger.Reset(ctx, 50_000)

	require.Equal(t, 50_000.0, ledger.CashBalance())
	require.Zero(t, ledger.TradeCount())
	require.Empty(t, ledger.Trades())
	_, ok := ledger.Position("AAPL")
	require.False(t, ok)
}

func TestResetFiresNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	ledger := NewPortfolioService(10_000, &fakePricer{}, nil, notifier, testLogger())

	ledger.Reset(context.Background(), 50_000)

	require.Equal(t, []string{"portfolio_reset"}, notifier.events)
	require.Contains(t, notifier.titles[0], "Portfolio reset")
}

func TestTradeLogIsAppendOnlyAndCopied(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ledger.ExecuteTrade(ctx, domain.TradeRequest{
			Symbol: "AAPL", Action: domain.ActionBuy, Quantity: 1, Price: 100,
		})
		require.NoError(t, err)
	}

	trades := ledger.Trades()
	require.Len(t, trades, 3)
	trades[0].Symbol = "MUTATED"
	require.Equal(t, "AAPL", ledger.Trades()[0].Symbol)
}

// Randomized solvency check: whatever order mix is thrown at the ledger,
// cash stays non-negative and positions stay positive.
func TestLedgerSolvencyUnderRandomOrders(t *testing.T) {
	ledger, _ := newTestLedger(10_000, nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	symbols := []string{"AAPL", "MSFT", "TSLA"}

	for i := 0; i < 500; i++ {
		req := domain.TradeRequest{
			Symbol:   symbols[rng.Intn(len(symbols))],
			Quantity: int64(rng.Intn(50) + 1),
			Price:    float64(rng.Intn(500)+1) + 0.5,
		}
		if rng.Intn(2) == 0 {
			req.Action = domain.ActionBuy
		} else {
			req.Action = domain.ActionSell
		}
		ledger.ExecuteTrade(ctx, req)

		require.GreaterOrEqual(t, ledger.CashBalance(), 0.0)
		for _, sym := range symbols {
			if pos, ok := ledger.Position(sym); ok {
				require.Positive(t, pos.Quantity)
			}
		}
	}
}
