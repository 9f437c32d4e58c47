package handlers

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var webFS embed.FS

var indexHTML, indexErr = webFS.ReadFile("web/index.html")

// serveIndex serves the logging panel.
func serveIndex(c *gin.Context) {
	if indexErr != nil {
		c.String(http.StatusNotFound, "file not found: index.html")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
