// Package telegram presents the dashboard in a Telegram chat and turns bot
// commands into dashboard actions.
//
// Each widget owns one message that is edited in place on every refresh.
// The Fear & Greed chart is sent as a photo and deleted when replaced.
// Sends are retried with a linear delay, since the Bot API rate-limits
// bursts of edits.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/coinboard/internal/dashboard"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/render"
)

// botAPI is the subset of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Client is a dashboard.Presenter backed by one Telegram chat.
type Client struct {
	bot            botAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration

	mu       sync.Mutex
	messages map[string]int // widget ID → message ID
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot botAPI, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		messages:       make(map[string]int),
	}, nil
}

// ShowWidget edits the widget's message, or sends it the first time.
func (c *Client) ShowWidget(ctx context.Context, w render.Widget) error {
	text := formatWidget(w)

	c.mu.Lock()
	msgID, ok := c.messages[w.ID]
	c.mu.Unlock()

	if ok {
		edit := tgbotapi.NewEditMessageText(c.chatID, msgID, text)
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		edit.DisableWebPagePreview = true
		_, err := c.send(ctx, edit)
		if err == nil || isNotModified(err) {
			return nil
		}
		// The message may have been deleted from the chat; post a new one.
		logger.Debug("Editing %s message failed, sending a new one: %v", w.ID, err)
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	sent, err := c.send(ctx, msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.messages[w.ID] = sent.MessageID
	c.mu.Unlock()
	return nil
}

// ShowChart sends the chart as a photo.
func (c *Client) ShowChart(ctx context.Context, png []byte, caption string) (dashboard.ChartHandle, error) {
	photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileBytes{Name: "fear-greed.png", Bytes: png})
	photo.Caption = escapeMarkdownV2(caption)
	photo.ParseMode = tgbotapi.ModeMarkdownV2
	sent, err := c.send(ctx, photo)
	if err != nil {
		return nil, err
	}
	return &chartMessage{client: c, messageID: sent.MessageID}, nil
}

// Notify sends a plain reply.
func (c *Client) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(c.chatID, escapeMarkdownV2(text))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := c.send(ctx, msg)
	return err
}

// SetTheme is a no-op: chat colours belong to the Telegram app. The chart
// image carries the theme instead.
func (c *Client) SetTheme(models.Theme) {}

// send delivers one request with retry.
func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		sent, err := c.bot.Send(msg)
		if err == nil {
			return sent, nil
		}
		lastErr = err
		if isNotModified(err) {
			return tgbotapi.Message{}, err
		}
		select {
		case <-ctx.Done():
			return tgbotapi.Message{}, ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return tgbotapi.Message{}, fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// isNotModified matches the Bot API's rejection of an edit that changes nothing.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

type chartMessage struct {
	client    *Client
	messageID int
}

// Dispose deletes the chart photo from the chat.
func (m *chartMessage) Dispose(context.Context) error {
	if _, err := m.client.bot.Request(tgbotapi.NewDeleteMessage(m.client.chatID, m.messageID)); err != nil {
		return fmt.Errorf("failed to delete chart message %d: %w", m.messageID, err)
	}
	return nil
}
