package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize caps request bodies at 1 MiB
const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit rejects requests whose body exceeds maxBytes. A zero or
// negative limit falls back to the default.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBodyTooLarge, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
