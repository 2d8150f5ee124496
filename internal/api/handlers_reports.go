// handlers_reports.go - Report library and Green IT handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/models"
)

// ReportHandlerImpl implements the ReportHandler interface
type ReportHandlerImpl struct {
	library ReportLibrary
}

// NewReportHandler creates a new report handler
func NewReportHandler(library ReportLibrary) ReportHandler {
	return &ReportHandlerImpl{library: library}
}

type reportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int             `json:"total"`
}

// HandleListReports returns the reports matching ?type=&q=&tag=
func (h *ReportHandlerImpl) HandleListReports(c echo.Context) error {
	var filter models.ReportFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return NewBadRequestError("invalid filter", err)
	}

	list := h.library.Filter(filter)
	return c.JSON(http.StatusOK, reportListResponse{Reports: list, Total: len(list)})
}

// HandleReportTypes returns the report types with their counts
func (h *ReportHandlerImpl) HandleReportTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.library.Types())
}

// HandleGetReport returns one report
func (h *ReportHandlerImpl) HandleGetReport(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return NewBadRequestError("report id must be a number", err)
	}

	report, err := h.library.Get(id)
	if err != nil {
		return fromDomainError(err, "report", raw)
	}
	return c.JSON(http.StatusOK, report)
}

// HandleGreenIT returns the Green IT impact report
func (h *ReportHandlerImpl) HandleGreenIT(c echo.Context) error {
	return c.JSON(http.StatusOK, h.library.GreenIT())
}

// HandleGreenITModality returns the Green IT charts of one modality
func (h *ReportHandlerImpl) HandleGreenITModality(c echo.Context) error {
	id := c.Param("modality")
	m, err := h.library.GreenITModality(id)
	if err != nil {
		return fromDomainError(err, "green it modality", id)
	}
	return c.JSON(http.StatusOK, m)
}
