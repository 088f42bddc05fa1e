package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

// DiagnosticsSaver сохранение результата диагностики из MiniApp
type DiagnosticsSaver interface {
	SaveDiagnostics(ctx context.Context, tgUserID int64, cookieID string, document domain.DiagnosticsDocument) error
}

// Service сценарии Telegram-бота
type Service struct {
	Users       repository.IUserRepo
	Diagnostics DiagnosticsSaver
	Messenger   service.IMessenger
	MiniAppURL  string
	// ReminderDelays задержка от started_at для каждого напоминания; по умолчанию ReminderKind.DefaultDelay
	ReminderDelays map[domain.ReminderKind]time.Duration
	Log            *slog.Logger
}

func New(
	users repository.IUserRepo,
	diagnostics DiagnosticsSaver,
	messenger service.IMessenger,
	miniAppURL string,
	log *slog.Logger,
) *Service {
	return &Service{
		Users:       users,
		Diagnostics: diagnostics,
		Messenger:   messenger,
		MiniAppURL:  miniAppURL,
		Log:         log,
	}
}

var _ service.IBotService = (*Service)(nil)
