// interfaces.go - Handler and dependency interfaces for clean separation of concerns
package api

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/models"
	"github.com/phisnet/backend/internal/upload"
)

// UploadHandler handles the drop target and the record collection
type UploadHandler interface {
	HandleUploadFiles(c echo.Context) error
	HandleListUploads(c echo.Context) error
	HandleListUploadsMsgpack(c echo.Context) error
	HandleUploadStats(c echo.Context) error
	HandleGetUpload(c echo.Context) error
	HandleDeleteUpload(c echo.Context) error
	HandleClearUploads(c echo.Context) error
	HandleGetBlob(c echo.Context) error
	HandleDownloadBlob(c echo.Context) error
	HandleAcceptedFormats(c echo.Context) error
}

// ThreatHandler serves the detection feed
type ThreatHandler interface {
	HandleListThreats(c echo.Context) error
	HandleThreatTypes(c echo.Context) error
	HandleGetThreat(c echo.Context) error
}

// DashboardHandler serves the dashboard counters
type DashboardHandler interface {
	HandleGetDashboard(c echo.Context) error
	HandleSetLive(c echo.Context) error
}

// MonitoringHandler serves the system component board and alerts
type MonitoringHandler interface {
	HandleOverview(c echo.Context) error
	HandleListComponents(c echo.Context) error
	HandleGetComponent(c echo.Context) error
	HandleListAlerts(c echo.Context) error
	HandleAcknowledgeAlert(c echo.Context) error
}

// ReportHandler serves the report library and the Green IT report
type ReportHandler interface {
	HandleListReports(c echo.Context) error
	HandleReportTypes(c echo.Context) error
	HandleGetReport(c echo.Context) error
	HandleGreenIT(c echo.Context) error
	HandleGreenITModality(c echo.Context) error
}

// AnalyticsHandler serves the analysis history
type AnalyticsHandler interface {
	HandleSummary(c echo.Context) error
	HandleRecent(c echo.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// UploadService is the part of upload.Manager the handlers use
type UploadService interface {
	AcceptFiles(files []upload.Incoming) ([]models.UploadRecord, []models.Rejection)
	List() []models.UploadRecord
	Get(id string) (models.UploadRecord, bool)
	Stats() models.UploadStats
	RemoveRecord(id string) error
	ClearAll() int
	Watch(buffer int) ([]models.UploadRecord, models.UploadStats, <-chan upload.Event, func())
}

// BlobSource is the read side of storage.Store
type BlobSource interface {
	Get(id string) (*models.FileInfo, error)
	Open(id string) (io.ReadCloser, error)
}

// ThreatFeed is the read side of threats.Feed
type ThreatFeed interface {
	Filter(filter models.ThreatFilter) []models.Threat
	Types() []models.ThreatType
	Get(id int) (models.Threat, error)
}

// MonitoringBoard is the part of monitoring.Board the handlers use
type MonitoringBoard interface {
	Overview() models.MonitoringOverview
	Components() []models.SystemComponent
	Component(id string) (models.SystemComponent, error)
	Alerts(filter models.AlertFilter) ([]models.Alert, error)
	Acknowledge(id int) (models.Alert, error)
}

// ReportLibrary is the read side of reports.Library
type ReportLibrary interface {
	Filter(filter models.ReportFilter) []models.Report
	Types() []models.ReportType
	Get(id int) (models.Report, error)
	GreenIT() models.GreenITReport
	GreenITModality(id string) (models.GreenITModality, error)
}

// DashboardSource is the part of dashboard.Live the handlers use
type DashboardSource interface {
	Snapshot() models.DashboardSnapshot
	SetLive(live bool)
}

// AnalyticsStore is the read side of history.Store
type AnalyticsStore interface {
	Summary(ctx context.Context) (*models.AnalyticsSummary, error)
	Recent(ctx context.Context, limit int) ([]models.AnalysisRow, error)
}
