package service

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// IMessenger отправка сообщений пользователю мессенджера
type IMessenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboardMarkup) error
}
