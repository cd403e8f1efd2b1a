package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/appcontext"
)

// ErrorResponse is the JSON envelope for every error the API returns. The
// capitalized key is part of the client contract.
type ErrorResponse struct {
	Error string `json:"Error"`
}

// GenericErrorMessage is returned for anything that escapes the handlers.
const GenericErrorMessage = "Something went wrong!"

// Error maps handler errors onto the API's error envelope. Status-carrying
// errors keep their code and message; everything else collapses to a 500
// with a fixed message so internals never leak by accident.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"request_id": appcontext.GetRequestID(ctx),
			"method":     appcontext.GetMethod(ctx),
			"route":      appcontext.GetRoute(ctx),
		}).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := GenericErrorMessage

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			message = httperr.Error()
		}

		_ = c.JSON(code, ErrorResponse{Error: message})
	}
}
