package middlewares

import (
	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID берёт X-Request-ID клиента или выдаёт новый и возвращает его в ответе.
// Идентификатор попадает и в контекст запроса, логгер добавляет его к записям
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
