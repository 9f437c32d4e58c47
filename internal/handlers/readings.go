package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	csvFilename = "sensor_data.csv"

	errListReadings = "failed to load readings"
	errExport       = "failed to export readings"
	errExportPath   = "export path is required"
)

// ExportRequest is the payload of POST /api/v1/export.
type ExportRequest struct {
	// Destination on the logger host; the configured default when empty
	Path string `json:"path" example:"sensor_data.csv"`
}

// @Summary      List readings
// @Description  Log of the current session, or of the last one after it closed.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings [get]
func (h *Handler) getReadings(c *gin.Context) {
	readings, err := h.services.ListReadings(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListReadings, "readings_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      Download CSV
// @Description  Header row Distance,Command followed by one row per reading in log order.
// @Tags         export
// @Produce      text/csv
// @Success      200  {string}  string  "CSV file"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/export [get]
func (h *Handler) downloadCSV(c *gin.Context) {
	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	n, err := h.services.Export(c.Request.Context(), &buf)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errExport, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+csvFilename+`"`)
	c.Header("X-Row-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary      Save CSV on the logger host
// @Tags         export
// @Accept       json
// @Produce      json
// @Param        body  body   ExportRequest  false  "Destination path"
// @Success      200   {object}  map[string]interface{}  "path, rows"
// @Failure      400   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/export [post]
func (h *Handler) saveCSV(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = h.DefaultExportPath
	}
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errExportPath})
		return
	}

	n, err := h.services.ExportFile(c.Request.Context(), path)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errExport, "export_failed", err, "path", path)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "rows": n})
}
