package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/logger"
)

type errorBody struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": code, "message": msg}. Internal causes are logged, never sent.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ctx := c.Request().Context()
		body := toErrorBody(err)
		status := body.Error.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.Error(ctx, "request failed", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn(ctx, "write error response", err)
		}
	}
}

func toErrorBody(err error) errorBody {
	if ae := apperr.As(err); ae != nil {
		body := errorBody{Error: ae.Code(), Message: ae.Message()}
		if ae.Code() == apperr.CodeValidation {
			body.Details = ae.Details()
		}
		return body
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := codeForStatus(he.Code)
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && code != apperr.CodeInternal {
			msg = s
		}
		if code == apperr.CodeInternal {
			msg = "internal server error"
		}
		return errorBody{Error: code, Message: msg}
	}
	return errorBody{Error: apperr.CodeInternal, Message: "internal server error"}
}

// codeForStatus maps echo's own errors (unknown route, bad method, bind
// failures) into the taxonomy.
func codeForStatus(status int) apperr.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.CodeNotFound
	case http.StatusConflict:
		return apperr.CodeConflict
	case http.StatusTooManyRequests:
		return apperr.CodeRateLimit
	}
	return apperr.CodeInternal
}
