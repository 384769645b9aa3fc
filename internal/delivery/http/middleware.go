package http

import (
	"strconv"
	"strings"
	"time"

	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"
	"skyledger/pkg/jwt"

	"github.com/labstack/echo/v4"
)

type AuthUsecase interface {
	// VerifyUser verifies the access token and returns its claims.
	VerifyUser(token string) (jwt.Claims, error)
}

func AuthMiddleware(authUsecase AuthUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {

			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return customerrors.ErrMissingToken
			}

			accessToken := strings.TrimPrefix(header, "Bearer ")

			claims, err := authUsecase.VerifyUser(accessToken)
			if err != nil {
				return customerrors.ErrInvalidToken
			}

			c.Set("userID", claims.UserID)
			c.Set("username", claims.Subject)
			return next(c)
		}
	}
}

func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.RequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
