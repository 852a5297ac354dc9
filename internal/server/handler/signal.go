package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/quantfall/stockbot/internal/domain"
)

const defaultStrategy = "sma_crossover"

// SignalSource is the slice of the signal service the signal endpoints
// need.
type SignalSource interface {
	Signal(ctx context.Context, symbol, strategyName string) (domain.Signal, error)
	Strategies() []domain.StrategyInfo
}

// SignalHandler serves strategy evaluation endpoints.
type SignalHandler struct {
	signals SignalSource
}

func NewSignalHandler(signals SignalSource) *SignalHandler {
	return &SignalHandler{signals: signals}
}

// GetSignal handles GET /api/signals/{symbol}?strategy=name.
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(pathParam(r, "symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	strategyName := r.URL.Query().Get("strategy")
	if strategyName == "" {
		strategyName = defaultStrategy
	}

	sig, err := h.signals.Signal(r.Context(), symbol, strategyName)
	if err != nil {
		writeError(w, statusForError(err), "could not generate signal for "+symbol+": "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// ListStrategies handles GET /api/strategies.
func (h *SignalHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"strategies": h.signals.Strategies(),
	})
}
