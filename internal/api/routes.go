// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Uploads        UploadService
	Blobs          BlobSource
	MaxFileSize    int64
	Threats        ThreatFeed
	Dashboard      DashboardSource
	Analytics      AnalyticsStore
	Monitoring     MonitoringBoard
	Reports        ReportLibrary
	Version        string
	WSPingInterval time.Duration
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Upload     UploadHandler
	Threat     ThreatHandler
	Dashboard  DashboardHandler
	Analytics  AnalyticsHandler
	Monitoring MonitoringHandler
	Report     ReportHandler
	WebSocket  *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version),
		Upload:     NewUploadHandler(deps.Uploads, deps.Blobs, deps.MaxFileSize),
		Threat:     NewThreatHandler(deps.Threats),
		Dashboard:  NewDashboardHandler(deps.Dashboard),
		Analytics:  NewAnalyticsHandler(deps.Analytics),
		Monitoring: NewMonitoringHandler(deps.Monitoring),
		Report:     NewReportHandler(deps.Reports),
		WebSocket:  NewWebSocketHandler(deps.Uploads, deps.WSPingInterval),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Drop target and record collection
	uploadGroup := apiGroup.Group("/uploads")
	uploadGroup.POST("", handlers.Upload.HandleUploadFiles)
	uploadGroup.GET("", handlers.Upload.HandleListUploads)
	uploadGroup.DELETE("", handlers.Upload.HandleClearUploads)
	uploadGroup.GET("/msgpack", handlers.Upload.HandleListUploadsMsgpack)
	uploadGroup.GET("/stats", handlers.Upload.HandleUploadStats)
	uploadGroup.GET("/accepted", handlers.Upload.HandleAcceptedFormats)
	uploadGroup.GET("/:id", handlers.Upload.HandleGetUpload)
	uploadGroup.DELETE("/:id", handlers.Upload.HandleDeleteUpload)
	uploadGroup.GET("/:id/blob", handlers.Upload.HandleGetBlob)
	uploadGroup.GET("/:id/file", handlers.Upload.HandleDownloadBlob)

	// Change feed
	apiGroup.GET("/ws/uploads", handlers.WebSocket.HandleWebSocket)

	// Threat feed
	threatGroup := apiGroup.Group("/threats")
	threatGroup.GET("", handlers.Threat.HandleListThreats)
	threatGroup.GET("/types", handlers.Threat.HandleThreatTypes)
	threatGroup.GET("/:id", handlers.Threat.HandleGetThreat)

	// Dashboard
	apiGroup.GET("/dashboard", handlers.Dashboard.HandleGetDashboard)
	apiGroup.PUT("/dashboard/live", handlers.Dashboard.HandleSetLive)

	// Analytics
	apiGroup.GET("/analytics/summary", handlers.Analytics.HandleSummary)
	apiGroup.GET("/analytics/recent", handlers.Analytics.HandleRecent)

	// System monitoring
	monitoringGroup := apiGroup.Group("/monitoring")
	monitoringGroup.GET("", handlers.Monitoring.HandleOverview)
	monitoringGroup.GET("/components", handlers.Monitoring.HandleListComponents)
	monitoringGroup.GET("/components/:id", handlers.Monitoring.HandleGetComponent)
	monitoringGroup.GET("/alerts", handlers.Monitoring.HandleListAlerts)
	monitoringGroup.POST("/alerts/:id/ack", handlers.Monitoring.HandleAcknowledgeAlert)

	// Reports and Green IT
	reportGroup := apiGroup.Group("/reports")
	reportGroup.GET("", handlers.Report.HandleListReports)
	reportGroup.GET("/types", handlers.Report.HandleReportTypes)
	reportGroup.GET("/:id", handlers.Report.HandleGetReport)
	apiGroup.GET("/green-it", handlers.Report.HandleGreenIT)
	apiGroup.GET("/green-it/:modality", handlers.Report.HandleGreenITModality)
}

// SetupMiddleware configures the error handler shared by all routes
func SetupMiddleware(e *echo.Echo, showErrorDetails bool) {
	e.HTTPErrorHandler = NewErrorHandler(showErrorDetails)
}
