package errorhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"skyledger/pkg/customerrors"

	"github.com/labstack/echo/v4"
)

func HandleError(err error, c echo.Context) {

	code, message := mapError(err)

	if code == http.StatusInternalServerError {
		slog.Error("Internal Server Error",
			"err", err,
			"path", c.Path(),
			"method", c.Request().Method,
		)
	} else {
		slog.Warn("Handled error",
			"err", err,
			"path", c.Path(),
			"method", c.Request().Method,
		)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"detail": message})
		}
		if err != nil {
			slog.Error("Failed to write error response", "err", err)
		}
	}
}

// mapError translates the error taxonomy into stable HTTP statuses and the
// public messages of the API.
func mapError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, customerrors.ErrUsernameTaken):
		return http.StatusUnprocessableEntity, "Username already registered."
	case errors.Is(err, customerrors.ErrEmailTaken):
		return http.StatusUnprocessableEntity, "Email already registered."
	case errors.Is(err, customerrors.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case customerrors.IsAuth(err):
		return http.StatusUnauthorized, "Could not validate user."
	case errors.Is(err, customerrors.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, customerrors.ErrInsufficientCredits):
		return http.StatusForbidden, "Insufficient credits"
	case errors.Is(err, customerrors.ErrUpstream):
		return http.StatusBadGateway, "Upstream provider unavailable."
	case errors.Is(err, customerrors.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded. Try again later."
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
