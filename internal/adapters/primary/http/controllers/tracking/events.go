package trackingController

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/tracking"
	"github.com/gin-gonic/gin"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

// logHandler общий обработчик /api/log/*: разбор тела, запись, {ok, id, logged}
func logHandler[T any](c *Controller, log func(context.Context, T) (tracking.LogResult, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var in T
		if err := ctx.ShouldBindJSON(&in); err != nil {
			response.BadRequest(ctx, "invalid request")
			return
		}

		result, err := log(ctx.Request.Context(), in)
		if err != nil {
			response.Error(ctx, c.Log, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "id": result.ID, "logged": result.Logged})
	}
}

func (c *Controller) logEvent(ctx *gin.Context) {
	var in tracking.EventInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}

	id, err := c.Tracker.LogEvent(ctx.Request.Context(), in)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "id": id, "logged": true})
}

func (c *Controller) userEvents(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}

	limit := defaultEventsLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(ctx, "invalid limit")
			return
		}
		limit = min(n, maxEventsLimit)
	}

	ctx.JSON(http.StatusOK, gin.H{"events": c.Tracker.UserEvents(ctx.Request.Context(), tgUserID, limit)})
}

func (c *Controller) sessionEvents(ctx *gin.Context) {
	sessionID, ok := response.Int64Param(ctx, "session_id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"events": c.Tracker.SessionEvents(ctx.Request.Context(), sessionID)})
}
