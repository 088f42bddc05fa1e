package service

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// IBotService бизнес-логика бота
type IBotService interface {
	HandleCommand(ctx context.Context, from *domain.TelegramUser, chatID int64, command string) error
	HandleText(ctx context.Context, from *domain.TelegramUser, chatID int64, text string) error
	HandleWebAppData(ctx context.Context, from *domain.TelegramUser, chatID int64, data *domain.WebAppData) error
}
