package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/a5adamaty/booking-platform/internal/core/ports"
)

// ctxActor extracts the auth claims injected by the Auth middleware into an
// explicit Actor value and performs a fast-fail check before any service
// call: both claims must be present (presence proves the middleware ran).
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: userID, Role: role}, nil
}
