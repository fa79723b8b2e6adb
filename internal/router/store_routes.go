package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// RegisterStores mounts store browsing (public, cached, optionally
// authenticated), store creation (ADMIN) and rating writes (any
// authenticated role).
func RegisterStores(e *echo.Echo, s *handler.StoreHandler, d Deps) {
	g := e.Group("/api/stores")

	// OptionalJWT runs before the cache so the viewer is part of the key.
	read := []echo.MiddlewareFunc{middleware.OptionalJWT(d.Auth, d.Log), d.Cache.Middleware()}
	g.GET("", s.List, read...)
	g.GET("/:id", s.Get, read...)

	auth := middleware.JWTAuth(d.Auth, d.Log)
	g.POST("", s.Create, auth, middleware.RequireRole(model.RoleAdmin))
	g.POST("/:id/ratings", s.SubmitRating, auth)
	g.PUT("/:id/ratings", s.UpdateRating, auth)
}
