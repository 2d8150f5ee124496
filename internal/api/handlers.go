package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewBadRequestError("invalid "+name+" parameter", err)
	}
	return v, nil
}
