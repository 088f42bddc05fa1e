package telegram

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	telegramService "github.com/bormotovilya-ops/SpaceGrow/internal/services/telegram"
	"github.com/gin-gonic/gin"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *domain.Update) error
}

var _ UpdateHandler = (*telegramService.Service)(nil)

type Controller struct {
	Handler UpdateHandler
	// Secret пустой - заголовок не проверяется
	Secret string
	Log    *slog.Logger
}

func New(handler UpdateHandler, secret string, log *slog.Logger) *Controller {
	return &Controller{
		Handler: handler,
		Secret:  secret,
		Log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.Secret != "" {
		got := ctx.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(c.Secret)) != 1 {
			c.Log.Warn("webhook secret mismatch", "client_ip", ctx.ClientIP())
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	var update domain.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		response.BadRequest(ctx, "invalid request")
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	// ошибки обработки не возвращаются Telegram, иначе он будет повторять апдейт
	if err := c.Handler.HandleUpdate(ctx.Request.Context(), &update); err != nil {
		c.Log.Error("failed to handle update", "error", err, "update_id", update.UpdateID)
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
