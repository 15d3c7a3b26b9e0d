package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"madlib-maker/internal/config"
	"madlib-maker/internal/handler"
	"madlib-maker/internal/service"
	"madlib-maker/shared/database"
	"madlib-maker/shared/interfaces"
	sharedLogger "madlib-maker/shared/logger"
)

const (
	maxConnectRetries = 20
	connectRetryDelay = 3 * time.Second
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := sharedLogger.Must(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("backend", cfg.StoreBackend),
		zap.Duration("linkTTL", cfg.LinkTTL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		repo           interfaces.ShortLinkRepository
		rateLimitStore ratelimit.Store
	)
	inMemoryLimits := func() ratelimit.Store {
		return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: cfg.ShortenRateLimit})
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		redisClient, err := setupRedis(ctx, cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		repo = database.NewRedisShortLinkRepository(redisClient, logger)
		rateLimitStore = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       cfg.ShortenRateLimit,
		})

	case config.BackendPostgres:
		pgPool, err := setupPostgres(ctx, cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pgPool.Close()
		if err := database.ApplyMigrations(pgPool, logger); err != nil {
			zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
		}
		pgRepo := database.NewPgShortLinkRepository(pgPool, logger)
		go runPurgeLoop(ctx, pgRepo, cfg.PurgeInterval)
		repo = pgRepo
		rateLimitStore = inMemoryLimits()

	default:
		memRepo := database.NewMemoryShortLinkRepository(logger)
		go runPurgeLoop(ctx, memRepo, cfg.PurgeInterval)
		repo = memRepo
		rateLimitStore = inMemoryLimits()
		zap.L().Warn("Using in-memory store, short links are lost on restart")
	}

	shortLinkService := service.NewShortLinkService(repo, cfg.LinkTTL, logger)
	shortLinkHandler := handler.NewShortLinkHandler(shortLinkService, cfg.PublicBaseURL, cfg.MaxBodyBytes, logger)

	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	p := ginprometheus.NewPrometheus("gin")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		// One series per route, not per short code.
		return c.FullPath()
	}

	router := handler.NewRouter(shortLinkHandler, logger, handler.RouterOptions{
		Middleware:        []gin.HandlerFunc{p.HandlerFunc()},
		ShortenMiddleware: []gin.HandlerFunc{handler.NewShortenRateLimiter(rateLimitStore, logger)},
		AllowOrigins:      cfg.GetAllowedOrigins(),
	})
	p.SetMetricsPath(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// runPurgeLoop periodically deletes expired links from backends without
// native expiry.
func runPurgeLoop(ctx context.Context, repo interfaces.PurgeableShortLinkRepository, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				zap.L().Error("Failed to purge expired short links", zap.Error(err))
				continue
			}
			if n > 0 {
				zap.L().Info("Purged expired short links", zap.Int64("count", n))
			}
		}
	}
}

func setupPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}

	var lastErr error
	zap.L().Info("Attempting to connect to PostgreSQL",
		zap.String("host", cfg.DBHost),
		zap.Int("max_retries", maxConnectRetries),
		zap.Duration("retry_delay", connectRetryDelay),
	)

	for attempt := 1; attempt <= maxConnectRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err == nil {
				connectCancel()
				zap.L().Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}
		connectCancel()

		lastErr = err
		zap.L().Warn("Postgres connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxConnectRetries),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, connectRetryDelay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxConnectRetries, lastErr)
}

func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	zap.L().Info("Attempting to connect and ping Redis",
		zap.String("address", redisOpts.Addr),
		zap.Int("db", redisOpts.DB),
		zap.Int("max_retries", maxConnectRetries),
	)

	var lastErr error
	for attempt := 1; attempt <= maxConnectRetries; attempt++ {
		client := redis.NewClient(redisOpts)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()

		if err == nil {
			zap.L().Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Close()
		lastErr = err
		zap.L().Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxConnectRetries),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, connectRetryDelay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxConnectRetries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
