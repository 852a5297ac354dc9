package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantfall/stockbot/internal/domain"
)

// Pricer resolves the current price of a symbol. Implementations must
// return an error classified as domain.ErrNoData when no price exists.
type Pricer interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// PortfolioService is the paper-trading ledger. It owns the cash balance,
// the position map, and the append-only trade log. All mutations are
// serialized by a mutex so a trade either applies fully or not at all;
// cash never goes negative and a position exists only while its quantity
// is positive.
type PortfolioService struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]domain.Position
	trades    []domain.Trade

	pricer   Pricer
	bus      domain.SignalBus
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewPortfolioService creates a ledger with the given starting cash.
// bus and notifier may be nil to disable event publishing and alerts.
func NewPortfolioService(initialCash float64, pricer Pricer, bus domain.SignalBus, notifier Notifier, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{
		cash:      initialCash,
		positions: make(map[string]domain.Position),
		pricer:    pricer,
		bus:       bus,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "portfolio_service")),
		now:       time.Now,
	}
}

// ExecuteTrade applies a buy or sell order against the ledger. The
// execution price is the request's explicit price when set, otherwise the
// current quote; with neither available the order is rejected with
// domain.ErrUnpricedOrder. Rejections leave the ledger untouched.
func (s *PortfolioService) ExecuteTrade(ctx context.Context, req domain.TradeRequest) (domain.Trade, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || req.Quantity <= 0 || !req.Action.Valid() || req.Price < 0 {
		return domain.Trade{}, fmt.Errorf("portfolio: trade %s: %w", symbol, domain.ErrInvalidOrder)
	}

	// Resolve the execution price before taking the lock; quote lookups
	// are blocking I/O.
	price := req.Price
	if price == 0 {
		resolved, err := s.pricer.CurrentPrice(ctx, symbol)
		if err != nil || resolved <= 0 {
			return domain.Trade{}, fmt.Errorf("portfolio: trade %s: %w", symbol, domain.ErrUnpricedOrder)
		}
		price = resolved
	}
	totalValue := price * float64(req.Quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case domain.ActionBuy:
		if totalValue > s.cash {
			return domain.Trade{}, fmt.Errorf("portfolio: buy %d %s at %.2f: %w",
				req.Quantity, symbol, price, domain.ErrInsufficientFunds)
		}
		s.cash -= totalValue

		if held, ok := s.positions[symbol]; ok {
			newQty := held.Quantity + req.Quantity
			totalCost := float64(held.Quantity)*held.AveragePrice + totalValue
			s.positions[symbol] = domain.Position{
				Symbol:       symbol,
				Quantity:     newQty,
				AveragePrice: totalCost / float64(newQty),
			}
		} else {
			s.positions[symbol] = domain.Position{
				Symbol:       symbol,
				Quantity:     req.Quantity,
				AveragePrice: price,
			}
		}

	case domain.ActionSell:
		held, ok := s.positions[symbol]
		if !ok {
			return domain.Trade{}, fmt.Errorf("portfolio: sell %s: %w", symbol, domain.ErrNoPosition)
		}
		if held.Quantity < req.Quantity {
			return domain.Trade{}, fmt.Errorf("portfolio: sell %d %s, hold %d: %w",
				req.Quantity, symbol, held.Quantity, domain.ErrInsufficientShares)
		}
		s.cash += totalValue

		held.Quantity -= req.Quantity
		if held.Quantity == 0 {
			delete(s.positions, symbol)
		} else {
			s.positions[symbol] = held
		}
	}

	trade := domain.Trade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Action:     req.Action,
		Quantity:   req.Quantity,
		Price:      round2(price),
		TotalValue: round2(totalValue),
		Timestamp:  s.now().UTC(),
	}
	s.trades = append(s.trades, trade)

	s.logger.InfoContext(ctx, "trade executed",
		slog.String("id", trade.ID),
		slog.String("symbol", symbol),
		slog.String("action", string(req.Action)),
		slog.Int64("quantity", req.Quantity),
		slog.Float64("price", trade.Price),
	)
	s.publish(ctx, "trades", map[string]any{"event": "trade", "trade": trade})

	return trade, nil
}

// Portfolio returns a valued snapshot of the ledger. Positions whose
// quote is unavailable are marked to their cost basis instead of failing
// the whole call. Monetary figures are rounded to cents here only; the
// ledger itself keeps full precision.
func (s *PortfolioService) Portfolio(ctx context.Context) domain.Portfolio {
	s.mu.Lock()
	cash := s.cash
	held := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		held = append(held, p)
	}
	s.mu.Unlock()

	sortPositions(held)

	positions := make([]domain.ValuedPosition, 0, len(held))
	var totalMarketValue, totalPnL float64
	for _, p := range held {
		current, err := s.pricer.CurrentPrice(ctx, p.Symbol)
		markToCost := err != nil || current <= 0
		if markToCost {
			current = p.AveragePrice
		}

		marketValue := float64(p.Quantity) * current
		costBasis := float64(p.Quantity) * p.AveragePrice
		pnl := marketValue - costBasis
		var pnlPct float64
		if costBasis > 0 {
			pnlPct = pnl / costBasis * 100
		}

		positions = append(positions, domain.ValuedPosition{
			Symbol:               p.Symbol,
			Quantity:             p.Quantity,
			AveragePrice:         round2(p.AveragePrice),
			CurrentPrice:         round2(current),
			MarketValue:          round2(marketValue),
			UnrealizedPnL:        round2(pnl),
			UnrealizedPnLPercent: round2(pnlPct),
			MarkToCost:           markToCost,
		})
		totalMarketValue += marketValue
		totalPnL += pnl
	}

	return domain.Portfolio{
		CashBalance:        round2(cash),
		TotalValue:         round2(cash + totalMarketValue),
		Positions:          positions,
		TotalUnrealizedPnL: round2(totalPnL),
	}
}

// Reset reinitializes the ledger: cash is replaced and positions and the
// trade log are cleared.
func (s *PortfolioService) Reset(ctx context.Context, initialCash float64) {
	s.mu.Lock()
	s.cash = initialCash
	s.positions = make(map[string]domain.Position)
	s.trades = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "portfolio reset", slog.Float64("initial_cash", initialCash))
	s.publish(ctx, "portfolio", map[string]any{"event": "portfolio_reset", "initial_cash": initialCash})

	if s.notifier != nil {
		message := fmt.Sprintf("Ledger cleared; cash balance set to $%.2f", initialCash)
		if err := s.notifier.Notify(ctx, "portfolio_reset", "Portfolio reset", message); err != nil {
			s.logger.WarnContext(ctx, "reset notification failed", slog.String("error", err.Error()))
		}
	}
}

// Position returns the held position for a symbol, if any.
func (s *PortfolioService) Position(symbol string) (domain.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[strings.ToUpper(strings.TrimSpace(symbol))]
	return p, ok
}

// Trades returns a copy of the trade log in execution order.
func (s *PortfolioService) Trades() []domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// TradeCount returns the number of executed trades.
func (s *PortfolioService) TradeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

// CashBalance returns the current cash balance at full precision.
func (s *PortfolioService) CashBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cash
}

func (s *PortfolioService) publish(ctx context.Context, channel string, event map[string]any) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, channel, payload); err != nil {
		s.logger.WarnContext(ctx, "publish portfolio event failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// sortPositions orders positions by symbol for stable snapshots.
func sortPositions(positions []domain.Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
}

// round2 rounds monetary values to cents at the presentation boundary.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
