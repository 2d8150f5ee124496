// handlers_dashboard.go - Dashboard and analytics handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	source DashboardSource
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(source DashboardSource) DashboardHandler {
	return &DashboardHandlerImpl{source: source}
}

type setLiveRequest struct {
	Live *bool `json:"live"`
}

// HandleGetDashboard returns the current dashboard snapshot
func (h *DashboardHandlerImpl) HandleGetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.source.Snapshot())
}

// HandleSetLive pauses or resumes the counter drift
func (h *DashboardHandlerImpl) HandleSetLive(c echo.Context) error {
	var req setLiveRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Live == nil {
		return NewValidationError("live")
	}

	h.source.SetLive(*req.Live)
	return c.JSON(http.StatusOK, h.source.Snapshot())
}

// AnalyticsHandlerImpl implements the AnalyticsHandler interface
type AnalyticsHandlerImpl struct {
	store AnalyticsStore
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(store AnalyticsStore) AnalyticsHandler {
	return &AnalyticsHandlerImpl{store: store}
}

// HandleSummary returns the aggregated analysis history
func (h *AnalyticsHandlerImpl) HandleSummary(c echo.Context) error {
	summary, err := h.store.Summary(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to summarize analyses", err)
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleRecent returns the latest analyses, newest first
func (h *AnalyticsHandlerImpl) HandleRecent(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	if limit < 0 {
		return NewValidationError("limit")
	}

	rows, err := h.store.Recent(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to load recent analyses", err)
	}
	return c.JSON(http.StatusOK, rows)
}
