// Package config defines the top-level configuration for the stock bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by STOCKBOT_* environment
// variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Quotes    QuotesConfig    `toml:"quotes"`
	Redis     RedisConfig     `toml:"redis"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Bot       BotConfig       `toml:"bot"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// QuotesConfig holds quote provider parameters.
type QuotesConfig struct {
	BaseURL         string   `toml:"base_url"`
	RequestTimeout  duration `toml:"request_timeout"`
	CacheTTL        duration `toml:"cache_ttl"`
	HistoryPeriod   string   `toml:"history_period"`
	HistoryInterval string   `toml:"history_interval"`
}

// RedisConfig holds Redis connection parameters. Redis is optional: when
// disabled the bot uses in-process caches and event fan-out.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PortfolioConfig holds the paper-trading ledger parameters.
type PortfolioConfig struct {
	InitialCash float64 `toml:"initial_cash"`
}

// BotConfig holds the autonomous trading controller parameters. Symbols
// and CheckInterval are only used in "bot" mode, where the app starts the
// controller and polls it on a ticker.
type BotConfig struct {
	Strategy      string   `toml:"strategy"`
	Symbols       []string `toml:"symbols"`
	AutoTrade     bool     `toml:"auto_trade"`
	TradeAmount   float64  `toml:"trade_amount"`
	MinConfidence float64  `toml:"min_confidence"`
	CheckInterval duration `toml:"check_interval"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Quotes: QuotesConfig{
			BaseURL:         "https://query1.finance.yahoo.com",
			RequestTimeout:  duration{15 * time.Second},
			CacheTTL:        duration{time.Minute},
			HistoryPeriod:   "3mo",
			HistoryInterval: "1d",
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		Portfolio: PortfolioConfig{
			InitialCash: 100_000,
		},
		Bot: BotConfig{
			Strategy:      "sma_crossover",
			AutoTrade:     false,
			TradeAmount:   1000,
			MinConfidence: 0.6,
			CheckInterval: duration{5 * time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_executed", "portfolio_reset", "error"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"bot":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, bot)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if c.Quotes.BaseURL == "" {
		errs = append(errs, "quotes: base_url must not be empty")
	}
	if c.Quotes.RequestTimeout.Duration <= 0 {
		errs = append(errs, "quotes: request_timeout must be > 0")
	}
	if c.Quotes.CacheTTL.Duration < 0 {
		errs = append(errs, "quotes: cache_ttl must be >= 0")
	}
	if c.Quotes.HistoryPeriod == "" {
		errs = append(errs, "quotes: history_period must not be empty")
	}
	if c.Quotes.HistoryInterval == "" {
		errs = append(errs, "quotes: history_interval must not be empty")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.Portfolio.InitialCash < 0 {
		errs = append(errs, "portfolio: initial_cash must be >= 0")
	}

	if c.Bot.TradeAmount <= 0 {
		errs = append(errs, "bot: trade_amount must be > 0")
	}
	if c.Bot.MinConfidence < 0 || c.Bot.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("bot: min_confidence must be in [0,1], got %g", c.Bot.MinConfidence))
	}
	if c.Mode == "bot" {
		if len(c.Bot.Symbols) == 0 {
			errs = append(errs, "bot: at least one symbol is required for bot mode")
		}
		if c.Bot.CheckInterval.Duration <= 0 {
			errs = append(errs, "bot: check_interval must be > 0 for bot mode")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
