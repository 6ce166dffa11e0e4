package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// pathID parses a numeric path parameter. Non-numeric and negative values
// can never identify a persisted resource, so they resolve to 404.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}
