package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/rewired-gh/coinboard/internal/coingecko"
	"github.com/rewired-gh/coinboard/internal/config"
	"github.com/rewired-gh/coinboard/internal/cryptonews"
	"github.com/rewired-gh/coinboard/internal/dashboard"
	"github.com/rewired-gh/coinboard/internal/feargreed"
	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/storage"
)

// setup loads the .env file, configuration and logger shared by every subcommand.
func setup() (*config.Config, error) {
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)
	return cfg, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DBPath, cfg.Storage.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func closeStore(store storage.Store) {
	if err := store.Close(); err != nil {
		logger.Error("Failed to close storage: %v", err)
	}
}

// newDashboard wires the fetchers to a dashboard. Only the market API is
// rate limited; the other sources have no published quota.
func newDashboard(ctx context.Context, cfg *config.Config, store storage.Store, presenter dashboard.Presenter, prefs models.Preferences) *dashboard.Dashboard {
	httpClient := fetch.NewHTTPClient(fetch.ClientConfig{
		Timeout:             cfg.HTTP.Timeout,
		MaxIdleConns:        cfg.HTTP.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.HTTP.IdleConnTimeout,
	})

	market := coingecko.NewClient(cfg.CoinGecko.APIBaseURL, &fetch.Requester{
		HTTPClient: httpClient,
		Limiter:    fetch.NewLimiter(cfg.CoinGecko.RateLimit, cfg.CoinGecko.RateLimitBurst),
		UserAgent:  cfg.HTTP.UserAgent,
	})
	plain := &fetch.Requester{HTTPClient: httpClient, UserAgent: cfg.HTTP.UserAgent}
	index := feargreed.NewClient(cfg.FearGreed.APIURL, plain)
	news := cryptonews.NewClient(cfg.News.APIURL, plain)

	return dashboard.New(ctx, market, index, news, store, presenter, prefs, dashboard.Options{
		RefreshInterval: cfg.Dashboard.RefreshInterval,
		SearchDebounce:  cfg.Dashboard.SearchDebounce,
		PricesPerPage:   cfg.CoinGecko.PricesPerPage,
		MoversPerPage:   cfg.CoinGecko.MoversPerPage,
		MoversCount:     cfg.CoinGecko.MoversCount,
		Sparkline:       cfg.CoinGecko.IncludeSparkline,
		NewsLimit:       cfg.News.DisplayLimit,
		SentimentLimit:  cfg.News.SentimentLimit,
	})
}
