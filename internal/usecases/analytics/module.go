package analytics

import (
	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

// Service read-модели аналитики для API: пользователь, сайт, воронка, отладочная сводка
type Service struct {
	Analytics repository.IAnalyticsRepo
	Log       *slog.Logger
}

func New(analytics repository.IAnalyticsRepo, log *slog.Logger) *Service {
	return &Service{
		Analytics: analytics,
		Log:       log,
	}
}
