// Package server exposes the stockbot REST + WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quantfall/stockbot/internal/server/handler"
	"github.com/quantfall/stockbot/internal/server/middleware"
	"github.com/quantfall/stockbot/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health    *handler.HealthHandler
	Market    *handler.MarketHandler
	Portfolio *handler.PortfolioHandler
	Signals   *handler.SignalHandler
	Bot       *handler.BotHandler
}

// Server is the headless HTTP + WebSocket API server for the trading
// bot.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes on a ServeMux, wires the middleware
// chain (auth, logging, CORS) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.Health)

	// Market data.
	mux.HandleFunc("GET /api/stocks/{symbol}", handlers.Market.GetStock)
	mux.HandleFunc("GET /api/stocks/{symbol}/history", handlers.Market.GetHistory)

	// Portfolio and trading.
	mux.HandleFunc("GET /api/portfolio", handlers.Portfolio.GetPortfolio)
	mux.HandleFunc("POST /api/portfolio/reset", handlers.Portfolio.ResetPortfolio)
	mux.HandleFunc("POST /api/trade", handlers.Portfolio.ExecuteTrade)
	mux.HandleFunc("GET /api/trades", handlers.Portfolio.ListTrades)

	// Strategy signals.
	mux.HandleFunc("GET /api/signals/{symbol}", handlers.Signals.GetSignal)
	mux.HandleFunc("GET /api/strategies", handlers.Signals.ListStrategies)

	// Bot lifecycle.
	mux.HandleFunc("GET /api/bot/status", handlers.Bot.Status)
	mux.HandleFunc("POST /api/bot/start", handlers.Bot.Start)
	mux.HandleFunc("POST /api/bot/stop", handlers.Bot.Stop)
	mux.HandleFunc("POST /api/bot/check", handlers.Bot.Check)
	mux.HandleFunc("POST /api/bot/symbol/{symbol}", handlers.Bot.AddSymbol)
	mux.HandleFunc("DELETE /api/bot/symbol/{symbol}", handlers.Bot.RemoveSymbol)
	mux.HandleFunc("PUT /api/bot/strategy/{name}", handlers.Bot.SetStrategy)

	// WebSocket stream.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: srv, logger: logger}
}

// Start begins listening for HTTP requests. It blocks until the server
// errors or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// to finish within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
