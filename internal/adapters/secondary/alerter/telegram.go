package alerter

import (
	"context"
	"fmt"
	"unicode/utf8"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/telegram"
)

// лимит длины текста сообщения Bot API
const maxMessageRunes = 4096

// Client шлёт алерты в служебный чат (или топик форума) отдельным ботом
type Client struct {
	telegramClient  *telegram.Client
	chatID          int64
	messageThreadID *int64
	log             *slog.Logger
}

// NewClient nil, если алертер не настроен
func NewClient(cfg *Config, log *slog.Logger) *Client {
	if !cfg.Enabled() {
		return nil
	}

	return &Client{
		telegramClient:  telegram.NewClient(cfg.BotToken, log),
		chatID:          cfg.ChatID,
		messageThreadID: cfg.MessageThreadID,
		log:             log,
	}
}

// SendAlert отправляет алерт в Telegram группу (или топик форума)
func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.telegramClient == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	err := c.telegramClient.Send(ctx, telegram.SendMessageRequest{
		ChatID:          c.chatID,
		MessageThreadID: c.messageThreadID,
		Text:            clip(message),
	})
	if err != nil {
		c.log.Warn("failed to send alert",
			"error", err,
			"chat_id", c.chatID,
			"message_thread_id", c.messageThreadID,
		)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent successfully", "chat_id", c.chatID)
	return nil
}

func clip(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageRunes-1]) + "…"
}
