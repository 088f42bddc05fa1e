package segmentation

import (
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

const (
	defaultActiveWindow = 30 * 24 * time.Hour
	insightsUsersLimit  = 100
	sourceVisitsWindow  = 5

	welcomeLimit  = 50
	reminderLimit = 30
	offerLimit    = 20
)

type Config struct {
	MiniAppURL string
}

// Service сегментация пользователей, рекомендации и автоматические рассылки
type Service struct {
	Users     repository.IUserRepo
	Analytics repository.IAnalyticsRepo
	// Messenger необязателен
	Messenger service.IMessenger
	Config    Config
	Log       *slog.Logger

	now func() time.Time
}

func New(
	users repository.IUserRepo,
	analytics repository.IAnalyticsRepo,
	messenger service.IMessenger,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		Users:     users,
		Analytics: analytics,
		Messenger: messenger,
		Config:    cfg,
		Log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}
