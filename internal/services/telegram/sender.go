package telegram

import (
	"context"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// SendMessage отправляет сообщение, клавиатура опциональна
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboardMarkup) error {
	var err error
	if keyboard != nil {
		err = s.Client.SendMessageWithKeyboard(ctx, chatID, text, keyboard)
	} else {
		err = s.Client.SendMessage(ctx, chatID, text)
	}

	if err != nil {
		return domain.NewUpstreamError("telegram", fmt.Errorf("chat %d: %w", chatID, err))
	}

	s.Log.Debug("message sent successfully", "chat_id", chatID)
	return nil
}
