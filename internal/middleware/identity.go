package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/model"
)

const identityKey = "identity"

func setIdentity(c echo.Context, id model.Identity, log *logger.Logger) {
	c.Set(identityKey, id)
	if log != nil {
		req := c.Request()
		c.SetRequest(req.WithContext(log.WithUserID(req.Context(), id.UserID)))
	}
}

// Identity returns the authenticated caller, if any.
func Identity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}

// MustIdentity is for handlers mounted behind JWTAuth.
func MustIdentity(c echo.Context) (model.Identity, error) {
	id, ok := Identity(c)
	if !ok {
		return model.Identity{}, apperr.Unauthorized("not authorized, no token")
	}
	return id, nil
}

// userKey identifies the caller for cache and rate-limit keys.
func userKey(c echo.Context) string {
	if id, ok := Identity(c); ok {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "anon"
}
