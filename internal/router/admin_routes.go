package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /api/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, d Deps) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(d.Auth, d.Log),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/stats", a.Stats)
	g.GET("/users", a.ListUsers)
	g.POST("/users", a.CreateUser)
	g.GET("/users/:id", a.GetUser)
	g.PUT("/users/:id", a.UpdateUserRole)
	g.GET("/users/:id/rating", a.UserRating)
}
