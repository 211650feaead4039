package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitehub/pkg/vite"
)

// RequestID keeps an incoming X-Request-ID or assigns a fresh one, and echoes
// it on the response. The document handler logs failures under this id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(vite.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(vite.RequestIDHeader, id)
		}
		c.Header(vite.RequestIDHeader, id)
		c.Next()
	}
}
