package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// scopeMiddleware only lets through tokens granted the `:scope` of the route.
func scopeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.CanAccess(ctx.Param("scope")) {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// childMiddleware requires a token granted every scope: a child's progress spans scopes.
func childMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.CanAccess(AllScopes) {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
