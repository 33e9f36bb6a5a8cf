package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"atendimentos/cmd/internal/auth"
	"atendimentos/cmd/internal/config"
	"atendimentos/cmd/internal/domain/database"
	"atendimentos/cmd/internal/domain/database/repository"
	redisclient "atendimentos/cmd/internal/integration/redis"
	"atendimentos/cmd/internal/ratelimit"
	"atendimentos/cmd/internal/routes"
	"atendimentos/cmd/internal/service"
	"atendimentos/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validators.New()

	// Database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	// Optional statistics cache
	var statsCache service.StatsCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.InitRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warnf("redis unavailable at %s, statistics will not be cached: %v", cfg.Redis.Addr, err)
		} else {
			defer closeRedis(rdb)
			statsCache = redisclient.NewStatsCache(rdb, cfg.Redis.StatsTTL)
		}
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Getting repositories
	apptRepo := repository.NewAppointmentRepository(db, repository.WithTimeout(cfg.Database.AcquireTimeout))

	// Getting services
	statsService := service.NewStatisticsService(apptRepo, statsCache)
	apptService := service.NewAppointmentService(apptRepo, validate, statsService)
	authService := service.NewAuthService(service.AdminCredentials{
		Username:     cfg.Auth.AdminUsername,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, issuer, validate)
	healthService := service.NewHealthService(func(ctx context.Context) (database.PoolStats, error) {
		return database.Ping(ctx, db)
	})

	limiterStore := ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	limiterStore.StartJanitor(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.LogLevel)
	e.HTTPErrorHandler = routes.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(routes.RequestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Gzip())
	e.Use(middleware.RateLimiter(limiterStore))

	routes.Register(e, routes.Handlers{
		Appointments: routes.NewAppointmentDefault(apptService),
		Statistics:   routes.NewStatisticsDefault(statsService),
		Auth:         routes.NewAuthDefault(authService),
		Health:       routes.NewHealthDefault(healthService),
		Authenticate: auth.Middleware(issuer),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Errorf("failed to close redis client: %v", err)
	}
}
