package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/coinboard/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	FearGreed FearGreedConfig `mapstructure:"feargreed"`
	News      NewsConfig      `mapstructure:"news"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Terminal  TerminalConfig  `mapstructure:"terminal"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CoinGeckoConfig holds market data API configuration
type CoinGeckoConfig struct {
	APIBaseURL       string  `mapstructure:"api_base_url"`
	PricesPerPage    int     `mapstructure:"prices_per_page"`
	MoversPerPage    int     `mapstructure:"movers_per_page"`
	MoversCount      int     `mapstructure:"movers_count"`
	RateLimit        float64 `mapstructure:"rate_limit"` // requests per second
	RateLimitBurst   int     `mapstructure:"rate_limit_burst"`
	IncludeSparkline bool    `mapstructure:"include_sparkline"`
}

// FearGreedConfig holds sentiment index API configuration
type FearGreedConfig struct {
	APIURL string `mapstructure:"api_url"`
}

// NewsConfig holds news feed API configuration
type NewsConfig struct {
	APIURL         string `mapstructure:"api_url"`
	DisplayLimit   int    `mapstructure:"display_limit"`
	SentimentLimit int    `mapstructure:"sentiment_limit"`
}

// HTTPConfig holds the shared transport settings
type HTTPConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
}

// DashboardConfig holds refresh behavior and session defaults
type DashboardConfig struct {
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	SearchDebounce    time.Duration `mapstructure:"search_debounce"`
	DefaultCurrency   string        `mapstructure:"default_currency"`
	DefaultChartStyle string        `mapstructure:"default_chart_style"`
	DefaultLookback   int           `mapstructure:"default_lookback"`
	AutoRefresh       bool          `mapstructure:"auto_refresh"`
}

// TelegramConfig holds Telegram presenter configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// TerminalConfig holds terminal presenter configuration
type TerminalConfig struct {
	WordWrap int    `mapstructure:"word_wrap"`
	ChartDir string `mapstructure:"chart_dir"`
}

// StorageConfig holds storage and persistence configuration
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "sqlite" or "file"
	DBPath   string `mapstructure:"db_path"`
	FilePath string `mapstructure:"file_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads configuration from file and environment variables.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override, e.g. COINBOARD_TELEGRAM_BOT_TOKEN
	v.SetEnvPrefix("COINBOARD")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// CoinGecko defaults
	v.SetDefault("coingecko.api_base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.prices_per_page", 50)
	v.SetDefault("coingecko.movers_per_page", 100)
	v.SetDefault("coingecko.movers_count", 5)
	v.SetDefault("coingecko.rate_limit", 0.5)
	v.SetDefault("coingecko.rate_limit_burst", 5)
	v.SetDefault("coingecko.include_sparkline", true)

	// Fear & Greed defaults
	v.SetDefault("feargreed.api_url", "https://api.alternative.me/fng")

	// News defaults
	v.SetDefault("news.api_url", "https://min-api.cryptocompare.com/data/v2/news/?lang=EN")
	v.SetDefault("news.display_limit", 10)
	v.SetDefault("news.sentiment_limit", 5)

	// HTTP defaults
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.max_idle_conns", 20)
	v.SetDefault("http.max_idle_conns_per_host", 5)
	v.SetDefault("http.idle_conn_timeout", "90s")
	v.SetDefault("http.user_agent", "coinboard/1.0")

	// Dashboard defaults
	v.SetDefault("dashboard.refresh_interval", "5m")
	v.SetDefault("dashboard.search_debounce", "500ms")
	v.SetDefault("dashboard.default_currency", string(models.CurrencyUSD))
	v.SetDefault("dashboard.default_chart_style", string(models.ChartLine))
	v.SetDefault("dashboard.default_lookback", 7)
	v.SetDefault("dashboard.auto_refresh", true)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Terminal defaults
	v.SetDefault("terminal.word_wrap", 100)
	v.SetDefault("terminal.chart_dir", "./data/charts")

	// Storage defaults
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.db_path", "./data/coinboard.db")
	v.SetDefault("storage.file_path", "./data/coinboard.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate data source config
	if c.CoinGecko.APIBaseURL == "" {
		return fmt.Errorf("coingecko.api_base_url is required")
	}
	if c.CoinGecko.PricesPerPage < 1 || c.CoinGecko.PricesPerPage > 250 {
		return fmt.Errorf("coingecko.prices_per_page must be between 1 and 250")
	}
	if c.CoinGecko.MoversPerPage < 1 || c.CoinGecko.MoversPerPage > 250 {
		return fmt.Errorf("coingecko.movers_per_page must be between 1 and 250")
	}
	if c.CoinGecko.MoversCount < 1 {
		return fmt.Errorf("coingecko.movers_count must be at least 1")
	}
	if c.CoinGecko.RateLimit <= 0 {
		return fmt.Errorf("coingecko.rate_limit must be positive")
	}
	if c.CoinGecko.RateLimitBurst < 1 {
		return fmt.Errorf("coingecko.rate_limit_burst must be at least 1")
	}
	if c.FearGreed.APIURL == "" {
		return fmt.Errorf("feargreed.api_url is required")
	}
	if c.News.APIURL == "" {
		return fmt.Errorf("news.api_url is required")
	}
	if c.News.DisplayLimit < 1 || c.News.SentimentLimit < 1 {
		return fmt.Errorf("news.display_limit and news.sentiment_limit must be at least 1")
	}

	// Validate HTTP config
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}

	// Validate Dashboard config
	if c.Dashboard.RefreshInterval < 10*time.Second {
		return fmt.Errorf("dashboard.refresh_interval must be at least 10 seconds")
	}
	if c.Dashboard.SearchDebounce < 0 {
		return fmt.Errorf("dashboard.search_debounce must not be negative")
	}
	if _, err := models.ParseCurrency(c.Dashboard.DefaultCurrency); err != nil {
		return fmt.Errorf("dashboard.default_currency: %w", err)
	}
	if _, err := models.ParseChartStyle(c.Dashboard.DefaultChartStyle); err != nil {
		return fmt.Errorf("dashboard.default_chart_style: %w", err)
	}
	if err := models.ValidateLookback(c.Dashboard.DefaultLookback); err != nil {
		return fmt.Errorf("dashboard.default_lookback: %w", err)
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path is required for the sqlite backend")
		}
	case "file":
		if c.Storage.FilePath == "" {
			return fmt.Errorf("storage.file_path is required for the file backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: sqlite, file")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// DefaultPreferences returns the session-start display preferences.
// Theme is not part of it; the caller restores that from storage.
func (c *Config) DefaultPreferences() models.Preferences {
	currency, _ := models.ParseCurrency(c.Dashboard.DefaultCurrency)
	style, _ := models.ParseChartStyle(c.Dashboard.DefaultChartStyle)
	return models.Preferences{
		Currency:    currency,
		ChartStyle:  style,
		Lookback:    c.Dashboard.DefaultLookback,
		AutoRefresh: c.Dashboard.AutoRefresh,
		Theme:       models.ThemeDark,
	}
}
