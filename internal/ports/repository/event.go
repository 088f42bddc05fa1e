package repository

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// IEventRepo журнал событий и специализированные таблицы
type IEventRepo interface {
	InsertTx(ctx context.Context, q persistence.Querier, event *domain.Event) (int64, error)
	InsertFactTx(ctx context.Context, q persistence.Querier, fact domain.Fact) error

	ListByUser(ctx context.Context, tgUserID int64, limit int) ([]domain.EventWithSession, error)
	ListBySession(ctx context.Context, sessionID int64) ([]domain.Event, error)
	// ListByCookie события всех сессий cookie_id в порядке создания
	ListByCookie(ctx context.Context, cookieID string) ([]domain.Event, error)
	CountBySession(ctx context.Context, sessionID int64) (int64, error)
}
