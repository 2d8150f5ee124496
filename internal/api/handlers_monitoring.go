// handlers_monitoring.go - System monitoring handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/models"
)

// MonitoringHandlerImpl implements the MonitoringHandler interface
type MonitoringHandlerImpl struct {
	board MonitoringBoard
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(board MonitoringBoard) MonitoringHandler {
	return &MonitoringHandlerImpl{board: board}
}

type alertListResponse struct {
	Alerts []models.Alert `json:"alerts"`
	Total  int            `json:"total"`
}

// HandleOverview returns the component and alert counters
func (h *MonitoringHandlerImpl) HandleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.board.Overview())
}

// HandleListComponents returns every system component
func (h *MonitoringHandlerImpl) HandleListComponents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.board.Components())
}

// HandleGetComponent returns one system component
func (h *MonitoringHandlerImpl) HandleGetComponent(c echo.Context) error {
	id := c.Param("id")
	comp, err := h.board.Component(id)
	if err != nil {
		return fromDomainError(err, "component", id)
	}
	return c.JSON(http.StatusOK, comp)
}

// HandleListAlerts returns the alerts matching ?state=&level=&component=
func (h *MonitoringHandlerImpl) HandleListAlerts(c echo.Context) error {
	var filter models.AlertFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return NewBadRequestError("invalid filter", err)
	}

	alerts, err := h.board.Alerts(filter)
	if err != nil {
		return NewBadRequestError("invalid filter", err)
	}
	return c.JSON(http.StatusOK, alertListResponse{Alerts: alerts, Total: len(alerts)})
}

// HandleAcknowledgeAlert marks one alert as seen
func (h *MonitoringHandlerImpl) HandleAcknowledgeAlert(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return NewBadRequestError("alert id must be a number", err)
	}

	alert, err := h.board.Acknowledge(id)
	if err != nil {
		return fromDomainError(err, "alert", raw)
	}
	return c.JSON(http.StatusOK, alert)
}
