package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/coinboard/internal/dashboard"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
)

// Controller is the set of dashboard actions reachable from chat commands.
type Controller interface {
	Refresh(ctx context.Context, reason string) *dashboard.Cycle
	SetSearch(query string)
	SetCurrency(ctx context.Context, code string) (*dashboard.Cycle, error)
	SetChartStyle(ctx context.Context, style string) (*dashboard.Cycle, error)
	SetLookback(ctx context.Context, days int) (*dashboard.Cycle, error)
	SetAutoRefresh(on bool)
	ToggleTheme(ctx context.Context) (models.Theme, *dashboard.Cycle)
	ToggleFavorite(ctx context.Context, id string) (bool, *dashboard.Cycle)
	AddToPortfolio(ctx context.Context, id string, quantity float64) (*dashboard.Cycle, error)
	RemoveFromPortfolio(ctx context.Context, index int) (models.PortfolioEntry, *dashboard.Cycle, error)
	ShowPortfolio(ctx context.Context)
}

const helpText = `Commands:
/dashboard or /refresh - refresh every widget
/search <text> - filter prices (empty clears)
/currency <usd|eur|gbp|jpy|aud|cad>
/chart <line|bar>
/days <n> - Fear & Greed lookback (7, 14, 30, 90)
/autorefresh <on|off>
/theme - toggle dark/light
/fav <coin id> - toggle favorite
/add <coin> <quantity> - add to portfolio
/remove <n> - remove portfolio entry n
/portfolio - show holdings`

// ListenForCommands polls for bot updates until ctx is cancelled. Messages
// from chats other than the configured one are ignored.
func (c *Client) ListenForCommands(ctx context.Context, ctl Controller) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				c.handleUpdate(ctx, ctl, update)
			}
		}
	}()
	logger.Info("Listening for Telegram commands")
}

func (c *Client) handleUpdate(ctx context.Context, ctl Controller, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat == nil || msg.Chat.ID != c.chatID {
		logger.Warn("Ignoring command from unknown chat")
		return
	}

	reply := c.handleCommand(ctx, ctl, msg.Command(), msg.CommandArguments())
	if reply == "" {
		return
	}
	if err := c.Notify(ctx, reply); err != nil {
		logger.Error("Failed to reply to /%s: %v", msg.Command(), err)
	}
}

// handleCommand executes one command and returns the reply text, if any.
// Rejected input leaves the dashboard unchanged and is explained in the reply.
func (c *Client) handleCommand(ctx context.Context, ctl Controller, command, args string) string {
	args = strings.TrimSpace(args)
	logger.Debug("Handling command /%s %q", command, args)

	switch command {
	case "start", "help":
		return helpText

	case "dashboard", "refresh":
		ctl.Refresh(ctx, "command")
		return ""

	case "search":
		ctl.SetSearch(args)
		if args == "" {
			return "Search cleared"
		}
		return fmt.Sprintf("Searching for %q", args)

	case "currency":
		if _, err := ctl.SetCurrency(ctx, args); err != nil {
			return "⚠️ " + err.Error()
		}
		return "Currency set to " + strings.ToUpper(args)

	case "chart":
		if _, err := ctl.SetChartStyle(ctx, args); err != nil {
			return "⚠️ " + err.Error()
		}
		return "Chart style set to " + strings.ToLower(args)

	case "days":
		days, err := strconv.Atoi(args)
		if err != nil {
			return "⚠️ usage: /days <n>"
		}
		if _, err := ctl.SetLookback(ctx, days); err != nil {
			return "⚠️ " + err.Error()
		}
		return fmt.Sprintf("Showing %d days of Fear & Greed history", days)

	case "autorefresh":
		switch strings.ToLower(args) {
		case "on":
			ctl.SetAutoRefresh(true)
			return "Auto-refresh on"
		case "off":
			ctl.SetAutoRefresh(false)
			return "Auto-refresh off"
		}
		return "⚠️ usage: /autorefresh <on|off>"

	case "theme":
		theme, _ := ctl.ToggleTheme(ctx)
		return fmt.Sprintf("Theme set to %s", theme)

	case "fav":
		if args == "" {
			return "⚠️ usage: /fav <coin id>"
		}
		if on, _ := ctl.ToggleFavorite(ctx, args); on {
			return "★ " + args + " added to favorites"
		}
		return "☆ " + args + " removed from favorites"

	case "add":
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return "⚠️ usage: /add <coin> <quantity>"
		}
		qty, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "⚠️ quantity must be a number"
		}
		if _, err := ctl.AddToPortfolio(ctx, fields[0], qty); err != nil {
			return "⚠️ " + err.Error()
		}
		return ""

	case "remove":
		n, err := strconv.Atoi(args)
		if err != nil {
			return "⚠️ usage: /remove <n>"
		}
		removed, _, err := ctl.RemoveFromPortfolio(ctx, n-1)
		if err != nil {
			return fmt.Sprintf("⚠️ no portfolio entry %d", n)
		}
		return "Removed " + strings.ToUpper(removed.ID)

	case "portfolio":
		ctl.ShowPortfolio(ctx)
		return ""
	}

	return "Unknown command. Send /help for the list."
}
