package handlers

import (
	"errors"
	"net/http"

	"data_logger/internal/reader"
	"data_logger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errOpenPort        = "Error: Unable to open the selected COM port."
	errStartSession    = "failed to start logging"
	errStopSession     = "failed to stop logging"
	errGetSession      = "failed to load session"
	errLoopStopped     = "logger is shutting down"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// StartSessionRequest is the payload of POST /api/v1/session/start.
type StartSessionRequest struct {
	// Port identifier as listed by /api/v1/ports
	Port string `json:"port" binding:"required" example:"COM3"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List serial ports
// @Description  Re-queries the host on every call. Enumeration failures yield an empty list.
// @Tags         ports
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, ports"
// @Router       /api/v1/ports [get]
func (h *Handler) listPorts(c *gin.Context) {
	ports := h.services.ListPorts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count": len(ports),
		"ports": ports,
	})
}

// @Summary      Start logging
// @Description  Opens the port at the configured baud rate and starts a new session with an empty log.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body   StartSessionRequest  true  "Port to open"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/start [post]
func (h *Handler) startSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	st, err := h.services.Start(c.Request.Context(), req.Port)
	if err != nil {
		var poe *reader.PortOpenError
		switch {
		case errors.Is(err, service.ErrPortRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSessionActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &poe):
			h.logAndJSONError(c, http.StatusServiceUnavailable, errOpenPort, "session_start_failed", err, "port", req.Port)
		case errors.Is(err, service.ErrControllerStopped):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errLoopStopped})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errStartSession, "session_start_failed", err, "port", req.Port)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "state": st})
}

// @Summary      Stop logging
// @Description  Closes the port. The log stays readable and exportable until the next start.
// @Description  Stopping a closed session returns the current state unchanged.
// @Tags         session
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      415  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/stop [post]
func (h *Handler) stopSession(c *gin.Context) {
	st, err := h.services.Stop(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrControllerStopped):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errLoopStopped})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errStopSession, "session_stop_failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "state": st})
}

// @Summary      Get session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  models.SessionState
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session [get]
func (h *Handler) getSession(c *gin.Context) {
	st, err := h.services.State(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSession, "session_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
