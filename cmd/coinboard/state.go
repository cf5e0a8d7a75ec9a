package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/rewired-gh/coinboard/internal/favorites"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/portfolio"
	"github.com/rewired-gh/coinboard/internal/render"
	"github.com/rewired-gh/coinboard/internal/storage"
)

// withStore runs fn against the configured store.
func withStore(ctx context.Context, fn func(ctx context.Context, store storage.Store) subcommands.ExitStatus) subcommands.ExitStatus {
	cfg, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore(store)
	return fn(ctx, store)
}

// portfolioCmd edits the stored portfolio offline.
type portfolioCmd struct{}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "list, add or remove portfolio holdings" }
func (*portfolioCmd) Usage() string {
	return `coinboard portfolio [list]
coinboard portfolio add <coin> <quantity>
coinboard portfolio remove <n>

  Edits the holdings shown by the dashboard. Adding a coin that is already
  held increases its quantity. Entries are numbered from 1.
`
}

func (*portfolioCmd) SetFlags(*flag.FlagSet) {}

func (*portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	action := "list"
	if len(args) > 0 {
		action = args[0]
		args = args[1:]
	}

	return withStore(ctx, func(ctx context.Context, store storage.Store) subcommands.ExitStatus {
		p := portfolio.New(storage.LoadPortfolio(ctx, store))

		switch action {
		case "list":
		case "add":
			if len(args) != 2 {
				fmt.Fprintln(os.Stderr, "usage: coinboard portfolio add <coin> <quantity>")
				return subcommands.ExitUsageError
			}
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: quantity must be a number: %v\n", err)
				return subcommands.ExitUsageError
			}
			if err := p.AddOrAccumulate(args[0], qty); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
		case "remove":
			if len(args) != 1 {
				fmt.Fprintln(os.Stderr, "usage: coinboard portfolio remove <n>")
				return subcommands.ExitUsageError
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
			if _, err := p.Remove(n - 1); err != nil {
				fmt.Fprintf(os.Stderr, "Error: no portfolio entry %d\n", n)
				return subcommands.ExitFailure
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown action %q\n", action)
			return subcommands.ExitUsageError
		}

		if action != "list" {
			if err := storage.SavePortfolio(ctx, store, p.Entries()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		// No quotes offline: every row shows "no price" and the total is zero.
		fmt.Print(render.Portfolio(p.Breakdown(nil), decimal.Zero, models.CurrencyUSD).Text())
		return subcommands.ExitSuccess
	})
}

// favCmd lists or toggles favorites.
type favCmd struct{}

func (*favCmd) Name() string     { return "fav" }
func (*favCmd) Synopsis() string { return "list favorites, or toggle one" }
func (*favCmd) Usage() string {
	return `coinboard fav [<coin id>]

  Without an argument, lists the starred coins. With one, stars or unstars it.
`
}

func (*favCmd) SetFlags(*flag.FlagSet) {}

func (*favCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, func(ctx context.Context, store storage.Store) subcommands.ExitStatus {
		set := favorites.New(storage.LoadFavorites(ctx, store))
		if f.NArg() == 1 {
			id := portfolio.Normalize(f.Arg(0))
			if set.Toggle(id) {
				fmt.Printf("★ %s added\n", id)
			} else {
				fmt.Printf("☆ %s removed\n", id)
			}
			if err := storage.SaveFavorites(ctx, store, set.List()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}
		for _, id := range set.List() {
			fmt.Println("★ " + id)
		}
		return subcommands.ExitSuccess
	})
}

// themeCmd shows, sets or toggles the persisted theme.
type themeCmd struct{}

func (*themeCmd) Name() string     { return "theme" }
func (*themeCmd) Synopsis() string { return "show or change the colour theme" }
func (*themeCmd) Usage() string {
	return `coinboard theme [dark|light|toggle]
`
}

func (*themeCmd) SetFlags(*flag.FlagSet) {}

func (*themeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, func(ctx context.Context, store storage.Store) subcommands.ExitStatus {
		theme := storage.LoadTheme(ctx, store)
		if f.NArg() == 0 {
			fmt.Println(theme)
			return subcommands.ExitSuccess
		}

		switch f.Arg(0) {
		case "toggle":
			theme = theme.Toggle()
		case string(models.ThemeDark), string(models.ThemeLight):
			theme = models.ParseTheme(f.Arg(0))
		default:
			fmt.Fprintf(os.Stderr, "unknown theme %q\n", f.Arg(0))
			return subcommands.ExitUsageError
		}
		if err := storage.SaveTheme(ctx, store, theme); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(theme)
		return subcommands.ExitSuccess
	})
}
