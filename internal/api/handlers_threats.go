// handlers_threats.go - Threat feed handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/models"
)

// ThreatHandlerImpl implements the ThreatHandler interface
type ThreatHandlerImpl struct {
	feed ThreatFeed
}

// NewThreatHandler creates a new threat handler
func NewThreatHandler(feed ThreatFeed) ThreatHandler {
	return &ThreatHandlerImpl{feed: feed}
}

type threatListResponse struct {
	Threats []models.Threat `json:"threats"`
	Total   int             `json:"total"`
}

// HandleListThreats returns the threats matching ?type=&modality=&q=
func (h *ThreatHandlerImpl) HandleListThreats(c echo.Context) error {
	var filter models.ThreatFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return NewBadRequestError("invalid filter", err)
	}

	list := h.feed.Filter(filter)
	return c.JSON(http.StatusOK, threatListResponse{Threats: list, Total: len(list)})
}

// HandleThreatTypes returns the threat type counters
func (h *ThreatHandlerImpl) HandleThreatTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.feed.Types())
}

// HandleGetThreat returns one threat
func (h *ThreatHandlerImpl) HandleGetThreat(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return NewBadRequestError("threat id must be a number", err)
	}

	threat, err := h.feed.Get(id)
	if err != nil {
		return fromDomainError(err, "threat", raw)
	}

	return c.JSON(http.StatusOK, threat)
}
