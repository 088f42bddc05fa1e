package analytics

import (
	"context"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const recentEventsLimit = 5

// UserAnalytics при ошибке хранилища нулевые счётчики
func (s *Service) UserAnalytics(ctx context.Context, tgUserID int64) *domain.UserAnalytics {
	result, err := s.Analytics.UserAnalytics(ctx, tgUserID)
	if err != nil {
		s.Log.Warn("user analytics unavailable", "error", err, "tg_user_id", tgUserID)
		return &domain.UserAnalytics{TgUserID: tgUserID}
	}
	return result
}

// SiteStats при ошибке хранилища нулевые счётчики
func (s *Service) SiteStats(ctx context.Context) *domain.SiteStats {
	stats, err := s.Analytics.SiteStats(ctx)
	if err != nil {
		s.Log.Warn("site stats unavailable", "error", err)
		return &domain.SiteStats{}
	}
	return stats
}

// Funnel воронка в полуинтервале [from, to); from после to - ошибка валидации
func (s *Service) Funnel(ctx context.Context, tr domain.TimeRange) (*domain.Funnel, error) {
	if tr.From != nil && tr.To != nil && tr.From.After(*tr.To) {
		return nil, domain.NewValidationError("from", "must not be after to")
	}

	funnel, err := s.Analytics.Funnel(ctx, tr)
	if err != nil {
		s.Log.Warn("funnel unavailable", "error", err)
		return &domain.Funnel{From: tr.From, To: tr.To}, nil
	}
	return funnel, nil
}

// TableStats отладочная сводка; ошибки не маскируются
func (s *Service) TableStats(ctx context.Context) (*domain.TableStats, error) {
	stats, err := s.Analytics.TableStats(ctx, recentEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("table stats: %w", err)
	}
	return stats, nil
}
