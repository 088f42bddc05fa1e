package analyticsController

import (
	"context"
	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/analytics"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/segmentation"
	"github.com/gin-gonic/gin"
)

type Analytics interface {
	UserAnalytics(ctx context.Context, tgUserID int64) *domain.UserAnalytics
	SiteStats(ctx context.Context) *domain.SiteStats
	Funnel(ctx context.Context, tr domain.TimeRange) (*domain.Funnel, error)
	TableStats(ctx context.Context) (*domain.TableStats, error)
}

type Segmenter interface {
	Segment(ctx context.Context, tgUserID int64) *domain.Segmentation
	FindUsers(ctx context.Context, criteria map[string]any) []int64
	Insights(ctx context.Context, segment domain.Segment) (*domain.SegmentInsights, error)
	Recommendations(ctx context.Context, tgUserID int64) *domain.UserRecommendations
	Refresh(ctx context.Context) (*domain.SegmentRefresh, error)
	AutomatedActions(ctx context.Context) *domain.AutomatedActionsResult
}

var (
	_ Analytics = (*analytics.Service)(nil)
	_ Segmenter = (*segmentation.Service)(nil)
)

type Controller struct {
	Analytics Analytics
	Segmenter Segmenter
	Log       *slog.Logger
}

func New(analytics Analytics, segmenter Segmenter, log *slog.Logger) *Controller {
	return &Controller{
		Analytics: analytics,
		Segmenter: segmenter,
		Log:       log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/test-db", c.tableStats)

	group := api.Group("/analytics")
	group.GET("/user/:tg_user_id", c.userAnalytics)
	group.GET("/stats", c.siteStats)
	group.GET("/funnel", c.funnel)

	group.GET("/segment/:tg_user_id", c.segment)
	group.GET("/segments/:segment/insights", c.insights)
	group.POST("/segments/users", c.findUsers)
	group.POST("/segments/refresh", c.refresh)
	group.GET("/recommendations/:tg_user_id", c.recommendations)
	group.POST("/automated-actions", c.automatedActions)
}
