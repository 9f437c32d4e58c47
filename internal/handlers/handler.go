package handlers

import (
	"data_logger/internal/logger"
	"data_logger/internal/service"

	"github.com/gin-gonic/gin"

	_ "data_logger/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	// DefaultExportPath is used by POST /api/v1/export when the body names no path.
	DefaultExportPath string
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Logging panel
	router.GET("/", serveIndex)

	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// Display stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/ports", h.listPorts)
		h.registerSessionRoutes(api)
		api.GET("/readings", h.getReadings)
		h.registerExportRoutes(api)
		api.GET("/events", h.getEvents)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	session := api.Group("/session")
	{
		session.GET("", h.getSession)
		// Body example: {"port":"COM3"}
		session.POST("/start", requireJSON, h.startSession)
		session.POST("/stop", requireJSON, h.stopSession)
	}
}

func (h *Handler) registerExportRoutes(api *gin.RouterGroup) {
	export := api.Group("/export")
	{
		export.GET("", h.downloadCSV)
		// Body example: {"path":"sensor_data.csv"}
		export.POST("", requireJSON, h.saveCSV)
	}
}
