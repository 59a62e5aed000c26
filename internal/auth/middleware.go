package auth

import (
	stderrors "errors"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "netportal/internal/errors"
)

// CurrentClaims returns the portal claims attached by the JWT middleware.
func CurrentClaims(c echo.Context) (*Claims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	return claims, ok
}

// Middleware returns the echo-jwt middleware configured for portal claims.
// Token errors never leak parser detail to the client.
func Middleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			mapped := apperrors.ErrInvalidToken
			var extractionErr *echojwt.TokenExtractionError
			if stderrors.As(err, &extractionErr) {
				mapped = apperrors.ErrMissingToken
			}
			he := apperrors.MapErrorToHTTP(mapped)
			return c.JSON(he.StatusCode, he.ToErrorResponse())
		},
	})
}

// RequireRole rejects requests whose token audience does not match role.
// A valid admin token must never pass a user-only guard, and vice versa.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentClaims(c)
			if !ok {
				he := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
				return c.JSON(he.StatusCode, he.ToErrorResponse())
			}
			if claims.Type != role {
				he := apperrors.MapErrorToHTTP(apperrors.ErrWrongRole)
				return c.JSON(he.StatusCode, he.ToErrorResponse())
			}
			return next(c)
		}
	}
}
