package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/quantfall/stockbot/internal/domain"
)

// Ledger is the slice of the portfolio service the portfolio endpoints
// need.
type Ledger interface {
	Portfolio(ctx context.Context) domain.Portfolio
	Reset(ctx context.Context, initialCash float64)
	ExecuteTrade(ctx context.Context, req domain.TradeRequest) (domain.Trade, error)
	Trades() []domain.Trade
}

// PortfolioHandler serves the paper-trading ledger endpoints.
type PortfolioHandler struct {
	ledger      Ledger
	initialCash float64
}

func NewPortfolioHandler(ledger Ledger, initialCash float64) *PortfolioHandler {
	return &PortfolioHandler{ledger: ledger, initialCash: initialCash}
}

// GetPortfolio handles GET /api/portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Portfolio(r.Context()))
}

// ResetPortfolio handles POST /api/portfolio/reset. An optional body
// may override the starting cash balance.
func (h *PortfolioHandler) ResetPortfolio(w http.ResponseWriter, r *http.Request) {
	req := struct {
		InitialCash float64 `json:"initial_cash"`
	}{InitialCash: h.initialCash}

	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.InitialCash <= 0 {
		writeError(w, http.StatusBadRequest, "initial_cash must be positive")
		return
	}

	h.ledger.Reset(r.Context(), req.InitialCash)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "portfolio reset",
		"portfolio": h.ledger.Portfolio(r.Context()),
	})
}

// ExecuteTrade handles POST /api/trade.
func (h *PortfolioHandler) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	var req domain.TradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	trade, err := h.ledger.ExecuteTrade(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "trade executed",
		"trade":   trade,
	})
}

// ListTrades handles GET /api/trades.
func (h *PortfolioHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades := h.ledger.Trades()
	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"count":  len(trades),
	})
}
