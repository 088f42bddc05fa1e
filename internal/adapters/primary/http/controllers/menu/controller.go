package menuController

import (
	"net/http"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	items []domain.MenuItem
}

func New() *Controller {
	return &Controller{items: domain.Menu()}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/menu", c.menu)
}

func (c *Controller) menu(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.items)
}
