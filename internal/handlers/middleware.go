package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const errJSONOnly = "Content-Type must be application/json"

// requestLogger logs every request at debug level once it completes.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	h.log.Debugw("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

// requireJSON rejects state-changing requests that are not declared as JSON.
// Browsers cannot send application/json cross-origin without a preflight.
func requireJSON(c *gin.Context) {
	if c.ContentType() != binding.MIMEJSON {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": errJSONOnly})
		return
	}
	c.Next()
}
