package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/quantfall/stockbot/internal/domain"
	"github.com/quantfall/stockbot/internal/strategy"
)

// SignalSource evaluates a strategy for a symbol. *SignalService is the
// production implementation.
type SignalSource interface {
	Signal(ctx context.Context, symbol, strategyName string) (domain.Signal, error)
}

// Ledger is the subset of the portfolio ledger the bot controller needs.
type Ledger interface {
	ExecuteTrade(ctx context.Context, req domain.TradeRequest) (domain.Trade, error)
	Position(symbol string) (domain.Position, bool)
	TradeCount() int
}

// Notifier delivers operator notifications for bot events. It may be nil.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// BotService is the autonomous trading controller. It owns the run/stop
// lifecycle and the watch-list; each CheckSignals call evaluates the
// current strategy for every watched symbol and, when auto-trading is
// enabled and confidence clears the threshold, drives the ledger.
//
// The controller holds no timer of its own; polling is triggered by the
// caller (the HTTP check endpoint or the app's bot-mode ticker).
type BotService struct {
	mu          sync.Mutex
	running     bool
	strategy    string
	symbols     []string
	autoTrade   bool
	tradeAmount float64
	lastCheck   time.Time

	minConfidence float64
	signals       SignalSource
	registry      *strategy.Registry
	ledger        Ledger
	notifier      Notifier
	bus           domain.SignalBus
	logger        *slog.Logger
	now           func() time.Time
}

// NewBotService creates a stopped bot controller with an empty
// watch-list. minConfidence is the auto-trade gate (0.6 by default
// configuration). notifier and bus may be nil.
func NewBotService(
	signals SignalSource,
	registry *strategy.Registry,
	ledger Ledger,
	notifier Notifier,
	bus domain.SignalBus,
	defaultStrategy string,
	minConfidence float64,
	logger *slog.Logger,
) *BotService {
	return &BotService{
		strategy:      defaultStrategy,
		minConfidence: minConfidence,
		signals:       signals,
		registry:      registry,
		ledger:        ledger,
		notifier:      notifier,
		bus:           bus,
		logger:        logger.With(slog.String("component", "bot_service")),
		now:           time.Now,
	}
}

// Start transitions the bot to Running, replacing the watch-list and
// trading configuration. Symbols are normalized to upper case and
// de-duplicated, preserving first-seen order so polls iterate
// deterministically.
func (s *BotService) Start(ctx context.Context, symbols []string, strategyName string, autoTrade bool, tradeAmount float64) domain.BotStatus {
	s.mu.Lock()
	s.running = true
	s.symbols = normalizeSymbols(symbols)
	s.strategy = strategyName
	s.autoTrade = autoTrade
	s.tradeAmount = tradeAmount
	s.lastCheck = s.now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "bot started",
		slog.String("strategy", strategyName),
		slog.Bool("auto_trade", autoTrade),
		slog.Float64("trade_amount", tradeAmount),
		slog.Int("symbols", len(symbols)),
	)
	status := s.Status()
	s.publish(ctx, map[string]any{"event": "bot_started", "status": status})
	return status
}

// Stop transitions the bot to Stopped. The watch-list and configuration
// are retained so a subsequent Start can resume.
func (s *BotService) Stop(ctx context.Context) domain.BotStatus {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "bot stopped")
	status := s.Status()
	s.publish(ctx, map[string]any{"event": "bot_stopped", "status": status})
	return status
}

// Status reports the bot's current state. Strategy is included only
// while running; the trade count is read from the ledger.
func (s *BotService) Status() domain.BotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	// WatchedSymbols must serialize as [] rather than null when empty.
	status := domain.BotStatus{
		Running:        s.running,
		WatchedSymbols: append(make([]string, 0, len(s.symbols)), s.symbols...),
		TotalTrades:    s.ledger.TradeCount(),
	}
	if s.running {
		status.Strategy = s.strategy
	}
	if !s.lastCheck.IsZero() {
		t := s.lastCheck
		status.LastCheck = &t
	}
	return status
}

// AddSymbol adds a symbol to the watch-list; adding an already-watched
// symbol is a no-op.
func (s *BotService) AddSymbol(symbol string) domain.BotStatus {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	if symbol != "" && !slices.Contains(s.symbols, symbol) {
		s.symbols = append(s.symbols, symbol)
	}
	s.mu.Unlock()
	return s.Status()
}

// RemoveSymbol removes a symbol from the watch-list; removing an absent
// symbol is a no-op.
func (s *BotService) RemoveSymbol(symbol string) domain.BotStatus {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	for i, existing := range s.symbols {
		if existing == symbol {
			s.symbols = append(s.symbols[:i], s.symbols[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return s.Status()
}

// SetStrategy switches the bot's strategy. Unknown names are rejected
// with domain.ErrUnknownStrategy and leave the current strategy
// unchanged.
func (s *BotService) SetStrategy(name string) (domain.BotStatus, error) {
	if !s.registry.Has(name) {
		return s.Status(), fmt.Errorf("bot: set strategy %q: %w", name, domain.ErrUnknownStrategy)
	}

	s.mu.Lock()
	s.strategy = name
	s.mu.Unlock()
	return s.Status(), nil
}

// CheckSignals polls every watched symbol once. On a stopped bot it
// returns an empty result without touching the signal engine. Symbols
// with no signal (no data, thin history) are skipped; a failing symbol
// never aborts the rest of the poll.
func (s *BotService) CheckSignals(ctx context.Context) []domain.CheckResult {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return []domain.CheckResult{}
	}
	s.lastCheck = s.now()
	symbols := append([]string(nil), s.symbols...)
	strategyName := s.strategy
	autoTrade := s.autoTrade
	tradeAmount := s.tradeAmount
	s.mu.Unlock()

	results := make([]domain.CheckResult, 0, len(symbols))
	for _, symbol := range symbols {
		sig, err := s.signals.Signal(ctx, symbol, strategyName)
		if err != nil {
			s.logger.DebugContext(ctx, "no signal for symbol",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}

		result := domain.CheckResult{
			Symbol:     symbol,
			Signal:     sig.Kind,
			Confidence: sig.Confidence,
			Price:      sig.Price,
			Details:    sig.Details,
		}

		if autoTrade && sig.Confidence >= s.minConfidence {
			if trade, ok := s.executeSignal(ctx, symbol, sig, tradeAmount); ok {
				result.TradeExecuted = true
				result.Trade = &trade
			}
		}

		results = append(results, result)
	}

	s.publish(ctx, map[string]any{"event": "bot_check", "results": results})
	return results
}

// executeSignal derives an order from a BUY or SELL signal and submits it
// to the ledger. HOLD signals never trade.
func (s *BotService) executeSignal(ctx context.Context, symbol string, sig domain.Signal, tradeAmount float64) (domain.Trade, bool) {
	var req domain.TradeRequest

	switch sig.Kind {
	case domain.SignalBuy:
		quantity := int64(math.Floor(tradeAmount / sig.Price))
		if quantity <= 0 {
			return domain.Trade{}, false
		}
		req = domain.TradeRequest{
			Symbol:   symbol,
			Action:   domain.ActionBuy,
			Quantity: quantity,
			Price:    sig.Price,
		}

	case domain.SignalSell:
		held, ok := s.ledger.Position(symbol)
		if !ok || held.Quantity <= 0 {
			return domain.Trade{}, false
		}
		req = domain.TradeRequest{
			Symbol:   symbol,
			Action:   domain.ActionSell,
			Quantity: held.Quantity,
			Price:    sig.Price,
		}

	default:
		return domain.Trade{}, false
	}

	trade, err := s.ledger.ExecuteTrade(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "auto-trade rejected",
			slog.String("symbol", symbol),
			slog.String("signal", string(sig.Kind)),
			slog.String("error", err.Error()),
		)
		s.notifyError(ctx, symbol, sig, err)
		return domain.Trade{}, false
	}

	s.notify(ctx, trade, sig)
	return trade, true
}

// notifyError alerts operators when the ledger refuses an auto-trade,
// e.g. a buy signal arriving with the cash already spent.
func (s *BotService) notifyError(ctx context.Context, symbol string, sig domain.Signal, cause error) {
	if s.notifier == nil {
		return
	}
	title := fmt.Sprintf("Auto-trade rejected: %s %s", sig.Kind, symbol)
	message := fmt.Sprintf("%s signal (%s, confidence %.2f) could not be executed: %v",
		sig.Kind, sig.Strategy, sig.Confidence, cause)
	if err := s.notifier.Notify(ctx, "error", title, message); err != nil {
		s.logger.WarnContext(ctx, "error notification failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	}
}

// publish emits a bot lifecycle event on the "bot" channel; failures are
// logged and dropped.
func (s *BotService) publish(ctx context.Context, event map[string]any) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, "bot", payload); err != nil {
		s.logger.WarnContext(ctx, "publish bot event failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *BotService) notify(ctx context.Context, trade domain.Trade, sig domain.Signal) {
	if s.notifier == nil {
		return
	}
	title := fmt.Sprintf("Auto-trade: %s %d %s", strings.ToUpper(string(trade.Action)), trade.Quantity, trade.Symbol)
	message := fmt.Sprintf("%s signal (%s, confidence %.2f) executed at %.2f for %.2f total",
		sig.Kind, sig.Strategy, sig.Confidence, trade.Price, trade.TotalValue)
	if err := s.notifier.Notify(ctx, "trade_executed", title, message); err != nil {
		s.logger.WarnContext(ctx, "trade notification failed",
			slog.String("symbol", trade.Symbol),
			slog.String("error", err.Error()),
		)
	}
}

// normalizeSymbols upper-cases, trims, and de-duplicates symbols while
// preserving first-seen order.
func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || slices.Contains(out, symbol) {
			continue
		}
		out = append(out, symbol)
	}
	return out
}
