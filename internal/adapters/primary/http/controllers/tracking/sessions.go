package trackingController

import (
	"net/http"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	actionStart = "start"
	actionEnd   = "end"
)

type trackSessionRequest struct {
	Action    string `json:"action"`
	CookieID  string `json:"cookie_id"`
	SessionID *int64 `json:"session_id"`
	TgUserID  *int64 `json:"tg_user_id"`
	domain.SessionMetadata
}

func (c *Controller) trackSession(ctx *gin.Context) {
	var req trackSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}
	if strings.TrimSpace(req.CookieID) == "" {
		response.BadRequest(ctx, "cookie_id is required")
		return
	}

	switch {
	case req.Action == actionStart:
		c.startSession(ctx, req)
	case req.Action == actionEnd && req.SessionID != nil:
		c.endSession(ctx, *req.SessionID)
	default:
		response.BadRequest(ctx, "invalid action or missing session_id")
	}
}

func (c *Controller) startSession(ctx *gin.Context, req trackSessionRequest) {
	meta := req.SessionMetadata
	if meta.UserAgent == nil {
		if ua := ctx.Request.UserAgent(); ua != "" {
			meta.UserAgent = &ua
		}
	}
	if meta.IP == nil {
		ip := ctx.ClientIP()
		meta.IP = &ip
	}

	id, err := c.Tracker.OpenSession(ctx.Request.Context(), req.CookieID, req.TgUserID, meta)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session_id": id, "status": "started"})
}

func (c *Controller) endSession(ctx *gin.Context, sessionID int64) {
	if sessionID < 1 {
		response.BadRequest(ctx, "invalid session_id")
		return
	}
	closed, err := c.Tracker.CloseSession(ctx.Request.Context(), sessionID)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": closed, "status": "ended"})
}

// patchSession неизвестные поля отбрасываются, пустой патч не ошибка
func (c *Controller) patchSession(ctx *gin.Context) {
	id, ok := response.Int64Param(ctx, "id")
	if !ok {
		return
	}

	var patch domain.SessionPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}

	updated, err := c.Tracker.PatchSession(ctx.Request.Context(), id, patch.Allowed())
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": updated})
}

func (c *Controller) activeSessions(ctx *gin.Context) {
	cookieID := strings.TrimSpace(ctx.Query("cookie_id"))
	if cookieID == "" {
		response.BadRequest(ctx, "cookie_id is required")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"sessions": c.Tracker.ActiveSessions(ctx.Request.Context(), cookieID)})
}
