package analyticsController

import (
	"net/http"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func (c *Controller) userAnalytics(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, c.Analytics.UserAnalytics(ctx.Request.Context(), tgUserID))
}

func (c *Controller) siteStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.Analytics.SiteStats(ctx.Request.Context()))
}

func (c *Controller) funnel(ctx *gin.Context) {
	var (
		tr  domain.TimeRange
		err error
	)
	if tr.From, err = parseTime(ctx.Query("from")); err != nil {
		response.BadRequest(ctx, "invalid from: expected RFC3339 or YYYY-MM-DD")
		return
	}
	if tr.To, err = parseTime(ctx.Query("to")); err != nil {
		response.BadRequest(ctx, "invalid to: expected RFC3339 or YYYY-MM-DD")
		return
	}

	funnel, err := c.Analytics.Funnel(ctx.Request.Context(), tr)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, funnel)
}

// parseTime пустая строка - граница не задана
func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Controller) tableStats(ctx *gin.Context) {
	stats, err := c.Analytics.TableStats(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (c *Controller) segment(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, c.Segmenter.Segment(ctx.Request.Context(), tgUserID))
}

func (c *Controller) insights(ctx *gin.Context) {
	insights, err := c.Segmenter.Insights(ctx.Request.Context(), domain.Segment(ctx.Param("segment")))
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, insights)
}

// findUsers тело - критерии сегментации, например {"segment": "engaged", "engagement_level": "medium"}
func (c *Controller) findUsers(ctx *gin.Context) {
	var criteria map[string]any
	if err := ctx.ShouldBindJSON(&criteria); err != nil {
		response.BadRequest(ctx, "invalid criteria")
		return
	}

	users := c.Segmenter.FindUsers(ctx.Request.Context(), criteria)
	ctx.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (c *Controller) recommendations(ctx *gin.Context) {
	tgUserID, ok := response.Int64Param(ctx, "tg_user_id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, c.Segmenter.Recommendations(ctx.Request.Context(), tgUserID))
}

func (c *Controller) refresh(ctx *gin.Context) {
	result, err := c.Segmenter.Refresh(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *Controller) automatedActions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.Segmenter.AutomatedActions(ctx.Request.Context()))
}
