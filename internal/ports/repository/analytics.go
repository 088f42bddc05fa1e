package repository

import (
	"context"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// IAnalyticsRepo агрегаты для сегментации и отчётов
type IAnalyticsRepo interface {
	ContentTypeCounts(ctx context.Context, tgUserID int64) ([]domain.CountedValue, error)
	ConversationTypeCounts(ctx context.Context, tgUserID int64) ([]domain.CountedValue, error)
	// RecentSourceVisits custom_data последних событий source_visit
	RecentSourceVisits(ctx context.Context, tgUserID int64, limit int) ([]domain.Payload, error)
	EventTimes(ctx context.Context, tgUserID int64) ([]time.Time, error)
	SessionStarts(ctx context.Context, tgUserID int64) ([]time.Time, error)

	UserAnalytics(ctx context.Context, tgUserID int64) (*domain.UserAnalytics, error)
	SiteStats(ctx context.Context) (*domain.SiteStats, error)
	Funnel(ctx context.Context, r domain.TimeRange) (*domain.Funnel, error)
	ActiveUsers(ctx context.Context, since time.Time) ([]int64, error)
	TableStats(ctx context.Context, recent int) (*domain.TableStats, error)
}
