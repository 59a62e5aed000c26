package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"netportal/internal/auth"
	apperrors "netportal/internal/errors"
)

// respondError translates a domain error into the standard JSON error body.
func respondError(c echo.Context, err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}

// currentClaims returns the caller's token claims. The JWT middleware always
// runs first, so a miss here means the route was wired without it.
func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return claims, nil
}
