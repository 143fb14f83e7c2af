package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
)

// BodyLimit caps request bodies at maxBytes. Declared lengths over the cap are
// rejected up front; chunked bodies fail on read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			detail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Request body too large")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(detail))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
