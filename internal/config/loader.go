package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies STOCKBOT_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
// A missing file is not an error: defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known STOCKBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "STOCKBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "STOCKBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "STOCKBOT_SERVER_API_KEY")

	// ── Quotes ──
	setStr(&cfg.Quotes.BaseURL, "STOCKBOT_QUOTES_BASE_URL")
	setDuration(&cfg.Quotes.RequestTimeout, "STOCKBOT_QUOTES_REQUEST_TIMEOUT")
	setDuration(&cfg.Quotes.CacheTTL, "STOCKBOT_QUOTES_CACHE_TTL")
	setStr(&cfg.Quotes.HistoryPeriod, "STOCKBOT_QUOTES_HISTORY_PERIOD")
	setStr(&cfg.Quotes.HistoryInterval, "STOCKBOT_QUOTES_HISTORY_INTERVAL")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "STOCKBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "STOCKBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "STOCKBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "STOCKBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "STOCKBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "STOCKBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "STOCKBOT_REDIS_TLS_ENABLED")

	// ── Portfolio ──
	setFloat64(&cfg.Portfolio.InitialCash, "STOCKBOT_PORTFOLIO_INITIAL_CASH")

	// ── Bot ──
	setStr(&cfg.Bot.Strategy, "STOCKBOT_BOT_STRATEGY")
	setStringSlice(&cfg.Bot.Symbols, "STOCKBOT_BOT_SYMBOLS")
	setBool(&cfg.Bot.AutoTrade, "STOCKBOT_BOT_AUTO_TRADE")
	setFloat64(&cfg.Bot.TradeAmount, "STOCKBOT_BOT_TRADE_AMOUNT")
	setFloat64(&cfg.Bot.MinConfidence, "STOCKBOT_BOT_MIN_CONFIDENCE")
	setDuration(&cfg.Bot.CheckInterval, "STOCKBOT_BOT_CHECK_INTERVAL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "STOCKBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "STOCKBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "STOCKBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "STOCKBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "STOCKBOT_MODE")
	setStr(&cfg.LogLevel, "STOCKBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
