package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/quantfall/stockbot/internal/domain"
)

// MarketData is the slice of the market service the stock endpoints
// need.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
	History(ctx context.Context, symbol, period, interval string) ([]domain.Candle, error)
}

// MarketHandler serves quote and history lookups.
type MarketHandler struct {
	market          MarketData
	historyPeriod   string
	historyInterval string
}

func NewMarketHandler(market MarketData, historyPeriod, historyInterval string) *MarketHandler {
	return &MarketHandler{
		market:          market,
		historyPeriod:   historyPeriod,
		historyInterval: historyInterval,
	}
}

// GetStock handles GET /api/stocks/{symbol}.
func (h *MarketHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, err := h.market.Quote(r.Context(), symbol)
	if err != nil {
		writeError(w, statusForError(err), "no data found for symbol "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type historyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// GetHistory handles GET /api/stocks/{symbol}/history. Period and
// interval can be overridden via query parameters.
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = h.historyPeriod
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = h.historyInterval
	}

	bars, err := h.market.History(r.Context(), symbol, period, interval)
	if err != nil {
		writeError(w, statusForError(err), "no data found for symbol "+symbol)
		return
	}

	out := make([]historyBar, 0, len(bars))
	for _, b := range bars {
		out = append(out, historyBar{
			Date:   b.Date.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"period": period,
		"data":   out,
	})
}
