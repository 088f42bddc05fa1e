package alerter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/response"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
	"github.com/gin-gonic/gin"
)

const (
	maxCommitMessage = 100
	maxStack         = 1500
)

type Controller struct {
	AlerterService service.IAlerterService
	Log            *slog.Logger
}

func New(alerterService service.IAlerterService, log *slog.Logger) *Controller {
	return &Controller{
		AlerterService: alerterService,
		Log:            log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhooks/deploy", c.handleDeployWebhook)
	router.POST("/api/log/client-error", c.handleClientError)
}

func (c *Controller) handleDeployWebhook(ctx *gin.Context) {
	var payload DeployWebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		c.Log.Warn("failed to bind deploy webhook", "error", err)
		response.BadRequest(ctx, "invalid request")
		return
	}

	c.Log.Info("deploy webhook received",
		"type", payload.Type,
		"status", payload.Details.Status,
		"service", payload.Resource.Service.Name)

	// 200 даже при ошибке отправки, иначе платформа будет повторять запрос
	if err := c.AlerterService.SendAlert(ctx.Request.Context(), formatDeploy(payload)); err != nil {
		c.Log.Warn("failed to send deploy alert", "error", err, "type", payload.Type)
		ctx.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func formatDeploy(p DeployWebhookPayload) string {
	var b strings.Builder

	b.WriteString("Деплой: " + p.Type)
	if p.Severity != "" {
		b.WriteString(" [" + p.Severity + "]")
	}
	b.WriteString("\n")

	target := p.Resource.Project.Name
	if p.Resource.Service.Name != "" {
		target += " / " + p.Resource.Service.Name
	}
	if p.Resource.Environment.Name != "" {
		target += " (" + p.Resource.Environment.Name + ")"
	}
	if target != "" {
		b.WriteString(target + "\n")
	}

	if p.Details.Status != "" {
		b.WriteString("Статус: " + strings.ToUpper(p.Details.Status) + "\n")
	}
	if p.Details.CommitHash != "" {
		hash := p.Details.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		b.WriteString("Коммит: " + hash)
		if p.Details.Branch != "" {
			b.WriteString(" в " + p.Details.Branch)
		}
		if p.Details.CommitAuthor != "" {
			b.WriteString(", " + p.Details.CommitAuthor)
		}
		b.WriteString("\n")
	}
	if p.Details.CommitMessage != "" {
		b.WriteString(clip(p.Details.CommitMessage, maxCommitMessage) + "\n")
	}
	if t, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
		b.WriteString(t.UTC().Format("02.01.2006 15:04:05 MST"))
	}

	return strings.TrimRight(b.String(), "\n")
}

// handleClientError фронтенд сообщает о своей ошибке; ответ всегда 200, чтобы не порождать новых ошибок на клиенте
func (c *Controller) handleClientError(ctx *gin.Context) {
	var payload ClientErrorPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.Message) == "" {
		response.BadRequest(ctx, "message is required")
		return
	}

	c.Log.Warn("client error reported",
		"message", payload.Message,
		"page", payload.Page,
		"cookie_id", payload.CookieID,
		"session_id", payload.SessionID)

	if err := c.AlerterService.SendAlert(ctx.Request.Context(), formatClientError(payload)); err != nil {
		c.Log.Warn("failed to send client error alert", "error", err)
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func formatClientError(p ClientErrorPayload) string {
	var b strings.Builder
	b.WriteString("Ошибка на клиенте: " + p.Message + "\n")
	if p.Page != "" {
		b.WriteString("Страница: " + p.Page + "\n")
	}
	if p.SessionID != nil {
		fmt.Fprintf(&b, "Сессия: %d\n", *p.SessionID)
	}
	if p.Stack != "" {
		b.WriteString("\n" + clip(p.Stack, maxStack))
	}
	return strings.TrimRight(b.String(), "\n")
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
