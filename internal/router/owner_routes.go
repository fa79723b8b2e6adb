package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// RegisterOwner registers OWNER-scoped endpoints under /api/owner.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, d Deps) {
	g := e.Group(
		"/api/owner",
		middleware.JWTAuth(d.Auth, d.Log),
		middleware.RequireRole(model.RoleOwner),
	)
	g.GET("/dashboard", o.Dashboard)
}
