package identityController

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/tracking"
	"github.com/gin-gonic/gin"
)

// Identities связки идентификаторов и результаты диагностики
type Identities interface {
	LinkIdentity(ctx context.Context, tgUserID int64, cookieID string, source domain.IdentitySource, miniappID *string) error
	ResolveByCookie(ctx context.Context, cookieID string) *domain.LinkedUser
	ResolveByTgUser(ctx context.Context, tgUserID int64) *domain.LinkedUser
	ListIdentities(ctx context.Context, tgUserID int64) []domain.IdentityLink
	SaveDiagnostics(ctx context.Context, tgUserID int64, cookieID string, document domain.DiagnosticsDocument) error
	LoadDiagnostics(ctx context.Context, tgUserID int64) *domain.DiagnosticsResult
}

var _ Identities = (*tracking.Service)(nil)

type Controller struct {
	Identities Identities
	Log        *slog.Logger
}

func New(identities Identities, log *slog.Logger) *Controller {
	return &Controller{
		Identities: identities,
		Log:        log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/identity/link", c.link)
	api.GET("/user/by-cookie/:cookie_id", c.byCookie)
	api.GET("/user/by-telegram/:tg_user_id", c.byTelegram)
	api.GET("/user/by-telegram/:tg_user_id/identities", c.identities)

	api.POST("/diagnostics", c.saveDiagnostics)
	api.GET("/diagnostics/:tg_user_id", c.loadDiagnostics)
}

type linkRequest struct {
	TgUserID  int64                 `json:"tg_user_id"`
	CookieID  string                `json:"cookie_id"`
	Source    domain.IdentitySource `json:"source"`
	MiniappID *string               `json:"miniapp_id"`
}

func (c *Controller) link(ctx *gin.Context) {
	var req linkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}

	if err := c.Identities.LinkIdentity(ctx.Request.Context(), req.TgUserID, req.CookieID, req.Source, req.MiniappID); err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *Controller) byCookie(ctx *gin.Context) {
	cookieID := strings.TrimSpace(ctx.Param("cookie_id"))
	user := c.Identities.ResolveByCookie(ctx.Request.Context(), cookieID)
	if user == nil {
		response.NotFound(ctx, "user not found")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *Controller) byTelegram(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	user := c.Identities.ResolveByTgUser(ctx.Request.Context(), tgUserID)
	if user == nil {
		response.NotFound(ctx, "user not found")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *Controller) identities(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"identities": c.Identities.ListIdentities(ctx.Request.Context(), tgUserID)})
}

type diagnosticsRequest struct {
	TgUserID int64                      `json:"tg_user_id"`
	CookieID string                     `json:"cookie_id"`
	Result   domain.DiagnosticsDocument `json:"result"`
}

func (c *Controller) saveDiagnostics(ctx *gin.Context) {
	var req diagnosticsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}
	if len(req.Result) == 0 {
		response.BadRequest(ctx, "result is required")
		return
	}

	if err := c.Identities.SaveDiagnostics(ctx.Request.Context(), req.TgUserID, req.CookieID, req.Result); err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *Controller) loadDiagnostics(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	result := c.Identities.LoadDiagnostics(ctx.Request.Context(), tgUserID)
	if result == nil {
		response.NotFound(ctx, "diagnostics not found")
		return
	}
	ctx.JSON(http.StatusOK, result)
}
