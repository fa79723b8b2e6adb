package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/model"
)

// Authenticator turns a raw bearer token into an identity. Every failure
// must be reported as the same UNAUTHORIZED error.
type Authenticator interface {
	Authenticate(raw string) (model.Identity, error)
}

// JWTAuth rejects requests without a valid bearer token before any role
// check runs. On success the identity is stored on the echo context and
// the user id is added to the request logger.
func JWTAuth(auth Authenticator, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return apperr.Unauthorized("not authorized, no token")
			}
			id, err := auth.Authenticate(raw)
			if err != nil {
				return err
			}
			setIdentity(c, id, log)
			return next(c)
		}
	}
}

// OptionalJWT attaches an identity when a valid bearer token is present
// and otherwise lets the request through anonymously.
func OptionalJWT(auth Authenticator, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if id, err := auth.Authenticate(raw); err == nil {
					setIdentity(c, id, log)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(h[len(prefix):])
	return raw, raw != ""
}
