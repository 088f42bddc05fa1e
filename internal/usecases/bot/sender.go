package bot

import (
	"context"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

func (s *Service) send(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboardMarkup) error {
	if err := s.Messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		s.Log.Error("failed to send message",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
