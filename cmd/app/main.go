package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"skyledger/internal/config"
	routes "skyledger/internal/delivery/http"
	creditHandler "skyledger/internal/delivery/http/credit_handler"
	locationHandler "skyledger/internal/delivery/http/location_handler"
	userHandler "skyledger/internal/delivery/http/user_handler"
	"skyledger/internal/metrics"
	"skyledger/internal/provider/geoip"
	"skyledger/internal/provider/textgen"
	"skyledger/internal/provider/weather"
	psql "skyledger/internal/storage/postgres"
	locationRepo "skyledger/internal/storage/postgres/location"
	userRepo "skyledger/internal/storage/postgres/user"
	creditUs "skyledger/internal/usecase/credit"
	locationUs "skyledger/internal/usecase/location"
	userUs "skyledger/internal/usecase/user"
	errHandler "skyledger/pkg/error_handler"
	"skyledger/pkg/jwt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	config := config.LoadConfig()
	logger := setupLogger(config.Env)
	slog.SetDefault(logger)
	logger.Info("Application started", "env", config.Env)

	// Initialize Postgres connection
	DSN := config.PostgresConfig.DSN()
	pool, err := psql.NewPostgresConnection(DSN)
	if err != nil {
		logger.Error("Failed to connect to the database", "error", err)
		return
	}
	defer pool.Close()
	logger.Info("Connected to the database successfully")

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	jwtManager := jwt.NewJWTManager(config.JWTConfig.Secret, config.JWTConfig.AccessTTL, config.JWTConfig.RefreshTTL)

	// Rate-limit counters live in redis so the windows are shared across
	// instances. A dead redis degrades to a per-process window.
	var counters routes.CounterStore
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisConfig.Addr,
		Password: config.RedisConfig.Password,
		DB:       config.RedisConfig.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, falling back to in-process rate limiting", "error", err)
		_ = redisClient.Close()
		counters = routes.NewMemoryCounterStore()
	} else {
		counters = routes.NewRedisCounterStore(redisClient)
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errHandler.HandleError

	// Initialize repositories
	users := userRepo.NewUserRepo(pool, m)
	locations := locationRepo.NewLocationRepo(pool, m)

	// Initialize upstream provider clients
	geoClient := geoip.NewClient(config.ProvidersConfig.GeoBaseURL, config.ProvidersConfig.Timeout, m)
	weatherClient := weather.NewClient(config.ProvidersConfig.WeatherBaseURL, config.ProvidersConfig.WeatherAPIKey, config.ProvidersConfig.Timeout, m)
	textgenClient := textgen.NewClient(config.ProvidersConfig.TextGenBaseURL, config.ProvidersConfig.TextGenAPIKey, config.ProvidersConfig.Timeout, m)

	// Initialize use cases
	userUsecase := userUs.NewUserUsecase(users, jwtManager, m)
	creditUsecase := creditUs.NewCreditUsecase(users)
	locationUsecase := locationUs.NewLocationUsecase(locations, geoClient, weatherClient, textgenClient)

	// Initialize handlers and map routes
	routes.MapRoutes(e,
		userHandler.NewUserHandler(userUsecase),
		creditHandler.NewCreditHandler(creditUsecase),
		locationHandler.NewLocationHandler(locationUsecase),
		userUsecase,
		logger,
		config.RateLimiterConfig,
		m,
		counters,
		registry,
	)

	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	serverParams := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  config.Server.Timeout,
		WriteTimeout: config.Server.Timeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Run the server and wait for interrupt signals to shut it down
	// gracefully, letting in-flight requests finish first.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("addr", addr))
		if err := e.StartServer(serverParams); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server...")

		shutDownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := e.Shutdown(shutDownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	// Wait for all goroutines to finish and check for errors
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Application stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// setupLogger configures the logger based on the environment (production, development, local).
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case "production":
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "development", "local":
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}
