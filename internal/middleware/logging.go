package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/store-rating/internal/logger"
)

// RequestID assigns a uuid to every request lacking an X-Request-ID and
// puts it on the request logger.
func RequestID(log *logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(log.WithRequestID(req.Context(), id)))
		},
	})
}

// RequestLogger writes one structured line per request. It must run after
// RequestID so the line carries the request id.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := zerolog.InfoLevel
			switch {
			case v.Status >= 500:
				level = zerolog.ErrorLevel
			case v.Status >= 400:
				level = zerolog.WarnLevel
			}
			ev := log.Event(c.Request().Context(), level).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency)
			if v.Error != nil && v.Status >= 500 {
				ev = ev.Err(v.Error)
			}
			ev.Msg("request")
			return nil
		},
	})
}
