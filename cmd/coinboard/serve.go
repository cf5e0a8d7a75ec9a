package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/rewired-gh/coinboard/internal/dashboard"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/storage"
	"github.com/rewired-gh/coinboard/internal/telegram"
	"github.com/rewired-gh/coinboard/internal/terminal"
)

// serveCmd runs the dashboard until interrupted.
type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the dashboard with periodic refresh" }
func (*serveCmd) Usage() string {
	return `coinboard serve

  Runs the dashboard. With telegram.enabled the widgets are kept up to date
  in the configured chat and bot commands control it; otherwise widgets are
  printed to the terminal as they refresh.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("%v", err)
	}
	defer closeStore(store)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	var presenter dashboard.Presenter
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
		presenter = telegramClient
	} else {
		logger.Debug("Telegram disabled, printing to the terminal")
		presenter, err = terminal.New(os.Stdout, cfg.Terminal.ChartDir, cfg.Terminal.WordWrap, true, storage.LoadTheme(ctx, store))
		if err != nil {
			logger.Fatal("Failed to initialize terminal output: %v", err)
		}
	}

	d := newDashboard(ctx, cfg, store, presenter, cfg.DefaultPreferences())

	if telegramClient != nil {
		telegramClient.ListenForCommands(ctx, d)
	}

	if err := d.Run(ctx); err != nil {
		logger.Error("Dashboard stopped with error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
