package chatController

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/chat"
	"github.com/gin-gonic/gin"
)

type Assistant interface {
	Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

var _ Assistant = (*chat.Service)(nil)

type Controller struct {
	Assistant Assistant
	Log       *slog.Logger
}

func New(assistant Assistant, log *slog.Logger) *Controller {
	return &Controller{
		Assistant: assistant,
		Log:       log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/chat", c.chat)
}

func (c *Controller) chat(ctx *gin.Context) {
	var req domain.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "invalid request")
		return
	}

	reply, err := c.Assistant.Reply(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, c.Log, err)
		return
	}
	ctx.JSON(http.StatusOK, reply)
}
