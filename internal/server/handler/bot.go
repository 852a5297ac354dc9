package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/quantfall/stockbot/internal/domain"
)

// BotController is the slice of the bot service the bot endpoints need.
type BotController interface {
	Start(ctx context.Context, symbols []string, strategyName string, autoTrade bool, tradeAmount float64) domain.BotStatus
	Stop(ctx context.Context) domain.BotStatus
	Status() domain.BotStatus
	AddSymbol(symbol string) domain.BotStatus
	RemoveSymbol(symbol string) domain.BotStatus
	SetStrategy(name string) (domain.BotStatus, error)
	CheckSignals(ctx context.Context) []domain.CheckResult
}

// BotHandler serves the bot lifecycle endpoints.
type BotHandler struct {
	bot                BotController
	defaultTradeAmount float64
}

func NewBotHandler(bot BotController, defaultTradeAmount float64) *BotHandler {
	return &BotHandler{bot: bot, defaultTradeAmount: defaultTradeAmount}
}

// Status handles GET /api/bot/status.
func (h *BotHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bot.Status())
}

type startRequest struct {
	Symbols     []string `json:"symbols"`
	Strategy    string   `json:"strategy"`
	AutoTrade   bool     `json:"auto_trade"`
	TradeAmount float64  `json:"trade_amount"`
}

// Start handles POST /api/bot/start.
func (h *BotHandler) Start(w http.ResponseWriter, r *http.Request) {
	req := startRequest{
		Strategy:    defaultStrategy,
		TradeAmount: h.defaultTradeAmount,
	}
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if req.TradeAmount <= 0 {
		writeError(w, http.StatusBadRequest, "trade_amount must be positive")
		return
	}

	status := h.bot.Start(r.Context(), req.Symbols, req.Strategy, req.AutoTrade, req.TradeAmount)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "bot started",
		"status":  status,
	})
}

// Stop handles POST /api/bot/stop.
func (h *BotHandler) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "bot stopped",
		"status":  h.bot.Stop(r.Context()),
	})
}

// Check handles POST /api/bot/check, forcing an immediate signal pass
// over the watch-list.
func (h *BotHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !h.bot.Status().Running {
		writeError(w, http.StatusBadRequest, "bot is not running")
		return
	}
	results := h.bot.CheckSignals(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// AddSymbol handles POST /api/bot/symbol/{symbol}.
func (h *BotHandler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "symbol " + symbol + " added",
		"status":  h.bot.AddSymbol(symbol),
	})
}

// RemoveSymbol handles DELETE /api/bot/symbol/{symbol}.
func (h *BotHandler) RemoveSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "symbol " + symbol + " removed",
		"status":  h.bot.RemoveSymbol(symbol),
	})
}

// SetStrategy handles PUT /api/bot/strategy/{name}.
func (h *BotHandler) SetStrategy(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(pathParam(r, "name"))
	status, err := h.bot.SetStrategy(name)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "strategy set to " + name,
		"status":  status,
	})
}
