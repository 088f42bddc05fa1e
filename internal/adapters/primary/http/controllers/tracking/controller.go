package trackingController

import (
	"context"
	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/tracking"
	"github.com/gin-gonic/gin"
)

// Tracker запись визитов и событий
type Tracker interface {
	OpenSession(ctx context.Context, cookieID string, tgUserID *int64, meta domain.SessionMetadata) (int64, error)
	CloseSession(ctx context.Context, sessionID int64) (bool, error)
	PatchSession(ctx context.Context, sessionID int64, patch domain.SessionPatch) (bool, error)
	ActiveSessions(ctx context.Context, cookieID string) []domain.Session

	LogEvent(ctx context.Context, in tracking.EventInput) (int64, error)
	LogSourceVisit(ctx context.Context, in tracking.SourceVisit) (tracking.LogResult, error)
	LogMiniappOpen(ctx context.Context, in tracking.MiniappOpen) (tracking.LogResult, error)
	LogContentView(ctx context.Context, in tracking.ContentView) (tracking.LogResult, error)
	LogAIInteraction(ctx context.Context, in tracking.AIInteraction) (tracking.LogResult, error)
	LogDiagnosticCompleted(ctx context.Context, in tracking.DiagnosticCompleted) (tracking.LogResult, error)
	LogGameAction(ctx context.Context, in tracking.GameAction) (tracking.LogResult, error)
	LogCTAClick(ctx context.Context, in tracking.CTAClick) (tracking.LogResult, error)
	LogPersonalPathView(ctx context.Context, in tracking.PersonalPathView) (tracking.LogResult, error)

	UserEvents(ctx context.Context, tgUserID int64, limit int) []domain.EventWithSession
	SessionEvents(ctx context.Context, sessionID int64) []domain.Event
}

var _ Tracker = (*tracking.Service)(nil)

type Controller struct {
	Tracker Tracker
	Log     *slog.Logger
}

func New(tracker Tracker, log *slog.Logger) *Controller {
	return &Controller{
		Tracker: tracker,
		Log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/track-session", c.trackSession)
	api.PATCH("/sessions/:id", c.patchSession)
	api.GET("/sessions/active", c.activeSessions)

	logs := api.Group("/log")
	logs.POST("/event", c.logEvent)
	logs.POST("/source-visit", logHandler(c, c.Tracker.LogSourceVisit))
	logs.POST("/miniapp-open", logHandler(c, c.Tracker.LogMiniappOpen))
	logs.POST("/content-view", logHandler(c, c.Tracker.LogContentView))
	logs.POST("/ai-interaction", logHandler(c, c.Tracker.LogAIInteraction))
	logs.POST("/diagnostic-completed", logHandler(c, c.Tracker.LogDiagnosticCompleted))
	logs.POST("/game-action", logHandler(c, c.Tracker.LogGameAction))
	logs.POST("/cta-click", logHandler(c, c.Tracker.LogCTAClick))
	logs.POST("/personal-path-view", logHandler(c, c.Tracker.LogPersonalPathView))

	api.GET("/events/user/:tg_user_id", c.userEvents)
	api.GET("/events/session/:session_id", c.sessionEvents)
}
