package repository

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// IIdentityRepo связи cookie_id <-> tg_user_id
type IIdentityRepo interface {
	// Link upsert по паре (tg_user_id, cookie_id): при повторе обновляется только linked_at
	Link(ctx context.Context, link *domain.IdentityLink) error
	// ResolveByCookie пользователь последней связки для cookie_id
	ResolveByCookie(ctx context.Context, cookieID string) (*domain.LinkedUser, error)
	// ResolveByTgUser пользователь и его последняя связка (поля связки пустые, если её нет)
	ResolveByTgUser(ctx context.Context, tgUserID int64) (*domain.LinkedUser, error)
	ListByTgUser(ctx context.Context, tgUserID int64) ([]domain.IdentityLink, error)
}
