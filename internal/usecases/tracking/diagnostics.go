package tracking

import (
	"context"
	"errors"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// SaveDiagnostics повторное сохранение для той же пары (tg_user_id, cookie_id) заменяет документ целиком
func (s *Service) SaveDiagnostics(ctx context.Context, tgUserID int64, cookieID string, document domain.DiagnosticsDocument) error {
	if tgUserID <= 0 {
		return domain.NewValidationError("tg_user_id", "is required")
	}
	result := &domain.DiagnosticsResult{
		TgUserID:    tgUserID,
		CookieID:    strings.TrimSpace(cookieID),
		Result:      document,
		CompletedAt: s.now(),
	}
	if err := s.Diagnostics.Save(ctx, result); err != nil {
		s.Log.Error("failed to save diagnostics", "error", err, "tg_user_id", tgUserID)
		return err
	}
	return nil
}

// LoadDiagnostics последний результат пользователя; nil, если его нет
func (s *Service) LoadDiagnostics(ctx context.Context, tgUserID int64) *domain.DiagnosticsResult {
	result, err := s.Diagnostics.LoadLatest(ctx, tgUserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Log.Warn("diagnostics unavailable", "error", err, "tg_user_id", tgUserID)
		}
		return nil
	}
	return result
}
