package repository

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// ISessionRepo визиты (site_sessions)
type ISessionRepo interface {
	Open(ctx context.Context, cookieID string, tgUserID *int64, meta domain.SessionMetadata) (int64, error)
	// Close ставит session_end, только если он ещё не задан
	Close(ctx context.Context, sessionID int64) (bool, error)
	// Patch обновляет только разрешённые поля; false, если обновлять нечего или сессии нет
	Patch(ctx context.Context, sessionID int64, patch domain.SessionPatch) (bool, error)
	GetByID(ctx context.Context, sessionID int64) (*domain.Session, error)
	ListActive(ctx context.Context, cookieID string) ([]domain.Session, error)
	ListByCookie(ctx context.Context, cookieID string) ([]domain.Session, error)
	// AttachUser проставляет tg_user_id анонимным сессиям cookie_id
	AttachUser(ctx context.Context, cookieID string, tgUserID int64) (int64, error)

	// IncrementEventsTx events_count = events_count + 1; domain.ErrSessionNotFound, если сессии нет
	IncrementEventsTx(ctx context.Context, q persistence.Querier, sessionID int64) error
}
