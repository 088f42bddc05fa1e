package tracking

import (
	"context"
	"errors"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// LinkIdentity связывает cookie_id с пользователем Telegram и проставляет его анонимным сессиям этого cookie_id
func (s *Service) LinkIdentity(ctx context.Context, tgUserID int64, cookieID string, source domain.IdentitySource, miniappID *string) error {
	cookieID = strings.TrimSpace(cookieID)
	if tgUserID <= 0 {
		return domain.NewValidationError("tg_user_id", "is required")
	}
	if cookieID == "" {
		return domain.NewValidationError("cookie_id", "is required")
	}
	if source == "" {
		source = domain.IdentitySourceSite
	}
	if !source.IsValid() {
		return domain.NewValidationError("source", "must be one of telegram, site, miniapp")
	}

	link := &domain.IdentityLink{
		TgUserID:  tgUserID,
		CookieID:  cookieID,
		Source:    source,
		LinkedAt:  s.now(),
		MiniappID: miniappID,
	}
	if err := s.Identities.Link(ctx, link); err != nil {
		s.Log.Error("failed to link identity", "error", err, "tg_user_id", tgUserID, "cookie_id", cookieID)
		return err
	}

	attached, err := s.Sessions.AttachUser(ctx, cookieID, tgUserID)
	if err != nil {
		// связка уже записана, сессии догонятся при следующей привязке
		s.Log.Warn("failed to attach sessions to user", "error", err, "tg_user_id", tgUserID, "cookie_id", cookieID)
		return nil
	}
	if attached > 0 {
		s.Log.Info("anonymous sessions attached", "tg_user_id", tgUserID, "cookie_id", cookieID, "sessions", attached)
	}
	return nil
}

// ResolveByCookie nil, если связки нет или хранилище недоступно
func (s *Service) ResolveByCookie(ctx context.Context, cookieID string) *domain.LinkedUser {
	user, err := s.Identities.ResolveByCookie(ctx, cookieID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Log.Warn("resolve by cookie failed", "error", err, "cookie_id", cookieID)
		}
		return nil
	}
	return user
}

// ResolveByTgUser nil, если пользователя нет или хранилище недоступно
func (s *Service) ResolveByTgUser(ctx context.Context, tgUserID int64) *domain.LinkedUser {
	user, err := s.Identities.ResolveByTgUser(ctx, tgUserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Log.Warn("resolve by tg user failed", "error", err, "tg_user_id", tgUserID)
		}
		return nil
	}
	return user
}

func (s *Service) ListIdentities(ctx context.Context, tgUserID int64) []domain.IdentityLink {
	links, err := s.Identities.ListByTgUser(ctx, tgUserID)
	if err != nil {
		s.Log.Warn("identities unavailable", "error", err, "tg_user_id", tgUserID)
		return []domain.IdentityLink{}
	}
	return links
}
