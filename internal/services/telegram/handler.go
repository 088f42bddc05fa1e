package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// HandleUpdate основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	switch {
	case update.Message != nil:
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	case update.CallbackQuery != nil:
		// кнопок с callback_data бот не шлёт, просто гасим индикатор
		if err := s.Client.AnswerCallbackQuery(ctx, update.CallbackQuery.ID, "", false); err != nil {
			s.Log.Warn("failed to answer callback query", "error", err, "update_id", update.UpdateID)
		}
	}

	return nil
}

// HandleMessage роутинг сообщения: web_app_data, команда или текст
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat == nil {
		return fmt.Errorf("message without chat")
	}

	if message.Chat.Type != "private" {
		s.Log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	if s.Bot == nil {
		return fmt.Errorf("bot service is not set")
	}

	chatID := message.Chat.ID

	switch {
	case message.WebAppData != nil:
		return s.Bot.HandleWebAppData(ctx, message.From, chatID, message.WebAppData)
	case message.Text != nil:
		text := strings.TrimSpace(*message.Text)
		if IsCommand(text) {
			return s.Bot.HandleCommand(ctx, message.From, chatID, ParseCommand(text))
		}
		return s.Bot.HandleText(ctx, message.From, chatID, text)
	}

	return nil
}

// ParseCommand "/start@bot payload" -> "start"
func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	return strings.ToLower(text)
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
