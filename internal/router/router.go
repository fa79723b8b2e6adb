package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/service"
)

// Deps is everything the HTTP layer needs. Cache and RateLimit may be nil;
// an empty CORSOrigins allows any origin.
type Deps struct {
	Auth      *service.AuthService
	Stores    *service.StoreService
	Admin     *service.AdminService
	DB        handler.Pinger
	Log       *logger.Logger
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc

	CORSOrigins []string
}

// New builds the echo instance with the shared middleware chain, the
// central error handler and every route.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.RateLimit == nil {
		d.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(cors(d.CORSOrigins))
	e.Use(middleware.RequestID(d.Log))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(d.Auth), d)
	RegisterStores(e, handler.NewStoreHandler(d.Stores), d)
	RegisterAdmin(e, handler.NewAdminHandler(d.Admin, d.Stores), d)
	RegisterOwner(e, handler.NewOwnerHandler(d.Stores), d)
	return e
}

// cors lets the browser client, served from its own origin, call the API
// with a bearer token.
func cors(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderXRequestID,
		},
		ExposeHeaders: []string{echo.HeaderXRequestID, "Retry-After", "X-Cache"},
		MaxAge:        300,
	})
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth mounts the credential endpoints behind the rate limiter and
// the caller's own account endpoints behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, d Deps) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, d.RateLimit)
	g.POST("/login", a.Login, d.RateLimit)
	g.PUT("/updatepassword", a.UpdatePassword, middleware.JWTAuth(d.Auth, d.Log))

	users := e.Group("/api/users", middleware.JWTAuth(d.Auth, d.Log))
	users.GET("/profile", a.Profile)
}
