package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/storage"
	"github.com/rewired-gh/coinboard/internal/terminal"
)

// snapshotCmd refreshes every widget once and prints the dashboard.
type snapshotCmd struct {
	currency string
	chart    string
	days     int
	search   string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "print the dashboard once" }
func (*snapshotCmd) Usage() string {
	return `coinboard snapshot [-c <currency>] [-chart line|bar] [-days <n>] [-q <search>]

  Fetches every data source once and prints all widgets. The Fear & Greed
  chart is written as a PNG under terminal.chart_dir.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Quote currency (default from config)")
	f.StringVar(&c.chart, "chart", "", "Chart style: line or bar (default from config)")
	f.IntVar(&c.days, "days", 0, "Fear & Greed lookback in days (default from config)")
	f.StringVar(&c.search, "q", "", "Filter the price list")
}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	prefs, err := c.preferences(cfg.DefaultPreferences())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore(store)

	presenter, err := terminal.New(os.Stdout, cfg.Terminal.ChartDir, cfg.Terminal.WordWrap, false, storage.LoadTheme(ctx, store))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	d := newDashboard(ctx, cfg, store, presenter, prefs)
	cycle := d.Refresh(ctx, "snapshot")
	cycle.Wait()
	logger.Debug("Snapshot cycle %s complete", cycle.ID)

	if err := presenter.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// preferences applies the flag overrides to the configured defaults.
func (c *snapshotCmd) preferences(prefs models.Preferences) (models.Preferences, error) {
	if c.currency != "" {
		cur, err := models.ParseCurrency(c.currency)
		if err != nil {
			return prefs, err
		}
		prefs.Currency = cur
	}
	if c.chart != "" {
		style, err := models.ParseChartStyle(c.chart)
		if err != nil {
			return prefs, err
		}
		prefs.ChartStyle = style
	}
	if c.days != 0 {
		if err := models.ValidateLookback(c.days); err != nil {
			return prefs, err
		}
		prefs.Lookback = c.days
	}
	prefs.Search = c.search
	return prefs, nil
}
