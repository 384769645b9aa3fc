package http

import (
	"log/slog"

	"skyledger/internal/config"
	creditHandler "skyledger/internal/delivery/http/credit_handler"
	locationHandler "skyledger/internal/delivery/http/location_handler"
	userHandler "skyledger/internal/delivery/http/user_handler"
	metrics "skyledger/internal/metrics"

	"github.com/labstack/echo/v4"
	middleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func MapRoutes(
	e *echo.Echo,
	users *userHandler.UserHandler,
	credits *creditHandler.CreditHandler,
	locations *locationHandler.LocationHandler,
	authUsecase AuthUsecase,
	logger *slog.Logger,
	rateLimiterConfig config.RateLimiterConfig,
	m *metrics.Metrics,
	counters CounterStore,
	registry *prometheus.Registry,
) {
	// Middlewares
	e.Validator = NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:   middleware.DefaultSkipper,
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {

			if v.Error != nil {
				logger.Error("HTTP request error",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"error", v.Error,
				)
				return nil
			}

			logger.Info("HTTP request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)

			return nil
		},
	},
	))

	auth := AuthMiddleware(authUsecase)
	obs := MetricsMiddleware(m)
	authLimit := RateLimitMiddleware(counters, "auth", rateLimiterConfig.Limit, rateLimiterConfig.Window)
	locationLimit := RateLimitMiddleware(counters, "add_location", rateLimiterConfig.LocationLimit, rateLimiterConfig.LocationWindow)

	//routes
	api := e.Group("/api/v2")

	api.POST("/users/register", users.Register, authLimit, obs)
	api.POST("/users/token", users.Login, authLimit, obs)
	api.POST("/users/refresh", users.Refresh, authLimit, obs)

	api.GET("/users/profile", users.GetProfile, auth, obs)
	api.PUT("/users/profile", users.UpdateProfile, auth, obs)
	api.DELETE("/users/profile", users.DeleteProfile, auth, obs)

	api.GET("/credits", credits.GetCredits, auth, obs)
	api.POST("/credits/purchase", credits.Purchase, auth, obs)
	api.POST("/credits/usage", credits.Use, auth, obs)

	api.GET("/users/locations", locations.List, auth, obs)
	api.POST("/users/locations", locations.Add, locationLimit, auth, obs)
	api.DELETE("/users/locations/:id", locations.Delete, auth, obs)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("HTTP routes mapped successfully")
}
