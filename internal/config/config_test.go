package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "server", cfg.Mode)
	require.Equal(t, "sma_crossover", cfg.Bot.Strategy)
	require.Equal(t, 100_000.0, cfg.Portfolio.InitialCash)
	require.Equal(t, 0.6, cfg.Bot.MinConfidence)
	require.False(t, cfg.Redis.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "bot"
log_level = "debug"

[server]
port = 9000

[quotes]
cache_ttl = "30s"

[bot]
strategy = "rsi"
symbols = ["AAPL", "MSFT"]
auto_trade = true
trade_amount = 2500.0
check_interval = "1m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "bot", cfg.Mode)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Quotes.CacheTTL.Duration)
	require.Equal(t, "rsi", cfg.Bot.Strategy)
	require.Equal(t, []string{"AAPL", "MSFT"}, cfg.Bot.Symbols)
	require.True(t, cfg.Bot.AutoTrade)
	require.Equal(t, 2500.0, cfg.Bot.TradeAmount)
	require.Equal(t, time.Minute, cfg.Bot.CheckInterval.Duration)

	// Untouched sections keep their defaults.
	require.Equal(t, Defaults().Quotes.BaseURL, cfg.Quotes.BaseURL)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("STOCKBOT_SERVER_PORT", "8081")
	t.Setenv("STOCKBOT_BOT_MIN_CONFIDENCE", "0.75")
	t.Setenv("STOCKBOT_BOT_SYMBOLS", "nvda, amd ,")
	t.Setenv("STOCKBOT_QUOTES_CACHE_TTL", "45s")
	t.Setenv("STOCKBOT_REDIS_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, 0.75, cfg.Bot.MinConfidence)
	require.Equal(t, []string{"nvda", "amd"}, cfg.Bot.Symbols)
	require.Equal(t, 45*time.Second, cfg.Quotes.CacheTTL.Duration)
	require.True(t, cfg.Redis.Enabled)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "daemon"
	cfg.Server.Port = 0
	cfg.Bot.TradeAmount = -1
	cfg.Bot.MinConfidence = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
	require.Contains(t, err.Error(), "port must be")
	require.Contains(t, err.Error(), "trade_amount")
	require.Contains(t, err.Error(), "min_confidence")
}

func TestValidateBotModeRequiresSymbols(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bot"
	cfg.Bot.Symbols = nil

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one symbol")

	cfg.Bot.Symbols = []string{"AAPL"}
	require.NoError(t, cfg.Validate())
}

func TestDurationTextRoundTrip(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	require.Equal(t, 90*time.Second, d.Duration)

	out, err := d.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "1m30s", string(out))

	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
