package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.  It
// returns a plain text "ok" with a 200 status code.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
