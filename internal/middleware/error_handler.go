package middleware

import (
	"net/http"

	"pickMyBook/pkg/logger"

	jsonres "pickMyBook/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the global echo HTTP error handler. Anything that reaches
// it was not handled at the route level, so log it and return the common
// envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	_ = c.JSON(code, jsonres.Error(http.StatusText(code), message, nil))
}
