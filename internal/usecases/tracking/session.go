package tracking

import (
	"context"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// OpenSession начинает визит. Без tg_user_id сессия анонимная
func (s *Service) OpenSession(ctx context.Context, cookieID string, tgUserID *int64, meta domain.SessionMetadata) (int64, error) {
	cookieID = strings.TrimSpace(cookieID)
	if cookieID == "" {
		return 0, domain.NewValidationError("cookie_id", "is required")
	}
	return s.Sessions.Open(ctx, cookieID, tgUserID, meta)
}

// CloseSession true только при первом закрытии
func (s *Service) CloseSession(ctx context.Context, sessionID int64) (bool, error) {
	if sessionID <= 0 {
		return false, domain.NewValidationError("session_id", "is required")
	}
	return s.Sessions.Close(ctx, sessionID)
}

func (s *Service) PatchSession(ctx context.Context, sessionID int64, patch domain.SessionPatch) (bool, error) {
	if sessionID <= 0 {
		return false, domain.NewValidationError("session_id", "is required")
	}
	return s.Sessions.Patch(ctx, sessionID, patch)
}

// ActiveSessions при ошибке хранилища возвращает пустой список
func (s *Service) ActiveSessions(ctx context.Context, cookieID string) []domain.Session {
	sessions, err := s.Sessions.ListActive(ctx, cookieID)
	if err != nil {
		s.Log.Warn("active sessions unavailable", "error", err, "cookie_id", cookieID)
		return []domain.Session{}
	}
	return sessions
}
