// Package response единый формат ответов API: ресурс как есть либо {"error": "..."}
package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

// Error переводит доменную ошибку в HTTP-статус. Текст внутренних ошибок клиенту не уходит
func Error(c *gin.Context, log *slog.Logger, err error) {
	status := Status(err)
	message := err.Error()

	switch status {
	case http.StatusInternalServerError:
		log.ErrorContext(c.Request.Context(), "request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
		message = "internal server error"
	case http.StatusBadGateway:
		log.WarnContext(c.Request.Context(), "upstream failed", "error", err, "path", c.FullPath())
		// ответ провайдера может содержать ключи и URL
		message = "upstream service unavailable"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest невалидный запрос, который не дошёл до бизнес-логики
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": message})
}

// Int64Param положительный целый параметр пути
func Int64Param(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return value, true
}
