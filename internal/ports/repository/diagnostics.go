package repository

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// IDiagnosticsRepo результаты диагностики, одна запись на (tg_user_id, cookie_id)
type IDiagnosticsRepo interface {
	Save(ctx context.Context, result *domain.DiagnosticsResult) error
	// SaveTx полная замена документа при конфликте ключа
	SaveTx(ctx context.Context, q persistence.Querier, result *domain.DiagnosticsResult) error
	LoadLatest(ctx context.Context, tgUserID int64) (*domain.DiagnosticsResult, error)
	CountByUser(ctx context.Context, tgUserID int64) (int64, error)
}
