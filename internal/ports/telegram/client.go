package telegram

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// IClient клиент Telegram Bot API
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
}
