package healthcheckController

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

type HealthCheckController struct {
	db  Pinger
	log *slog.Logger
}

func New(db Pinger, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{
		db:  db,
		log: log,
	}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.health)
	r.GET("/ready", c.ready)
	r.GET("/api/health", c.health)
}

// health процесс жив, хранилище не проверяется
func (c *HealthCheckController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "spacegrow",
	})
}

// ready готовность принимать трафик: хранилище отвечает на ping
func (c *HealthCheckController) ready(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), pingTimeout)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		c.log.Error("database not ready", "error", err, "backend", c.db.Backend())
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "database unavailable",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"backend": c.db.Backend(),
	})
}
