package telegram

import (
	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/telegram"
)

// Service роутинг апдейтов Telegram в бизнес-логику бота и отправка сообщений
type Service struct {
	Bot    service.IBotService
	Client telegram.IClient
	Log    *slog.Logger
}

func New(client telegram.IClient, log *slog.Logger) *Service {
	return &Service{
		Client: client,
		Log:    log,
	}
}

// SetBotService бот создаётся после сервиса, т.к. сам использует его как IMessenger
func (s *Service) SetBotService(bot service.IBotService) {
	s.Bot = bot
}

var _ service.IMessenger = (*Service)(nil)
