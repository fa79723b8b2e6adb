package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/authz"
	"github.com/iliyamo/store-rating/internal/model"
)

// RequireRole must be mounted after JWTAuth. A missing identity is a 401,
// a role outside roles is a 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := MustIdentity(c)
			if err != nil {
				return err
			}
			if err := authz.Authorize(id, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
