package reportController

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/report"
	"github.com/gin-gonic/gin"
)

type Reporter interface {
	PersonalReport(ctx context.Context, cookieID string) (*domain.PersonalReport, error)
	Invalidate(ctx context.Context, cookieID string)
	Archives(ctx context.Context, cookieID string) ([]domain.ReportArchive, error)
	ArchivedReport(ctx context.Context, cookieID, id string) (*domain.PersonalReport, error)
}

var _ Reporter = (*report.Service)(nil)

type Controller struct {
	Reporter Reporter
	Log      *slog.Logger
}

func New(reporter Reporter, log *slog.Logger) *Controller {
	return &Controller{
		Reporter: reporter,
		Log:      log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/user/by-cookie/:cookie_id/personal-report")
	group.GET("", c.personalReport)
	group.GET("/archives", c.archives)
	group.GET("/archives/:id", c.archivedReport)
}

// personalReport refresh=true пересобирает отчёт в обход кэша
func (c *Controller) personalReport(ctx *gin.Context) {
	cookieID := ctx.Param("cookie_id")
	if refresh, _ := strconv.ParseBool(ctx.Query("refresh")); refresh {
		c.Reporter.Invalidate(ctx.Request.Context(), cookieID)
	}

	result, err := c.Reporter.PersonalReport(ctx.Request.Context(), cookieID)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *Controller) archives(ctx *gin.Context) {
	archives, err := c.Reporter.Archives(ctx.Request.Context(), ctx.Param("cookie_id"))
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"archives": archives})
}

func (c *Controller) archivedReport(ctx *gin.Context) {
	result, err := c.Reporter.ArchivedReport(ctx.Request.Context(), ctx.Param("cookie_id"), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
