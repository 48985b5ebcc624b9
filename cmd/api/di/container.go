package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-rest-api/cmd/api/infrastructure"
	"user-rest-api/internal/adapter/cache"
	"user-rest-api/internal/adapter/db/postgres"
	ginhandler "user-rest-api/internal/adapter/gin/handler"
	"user-rest-api/internal/adapter/gin/middleware"
	"user-rest-api/internal/adapter/repository/cached"
	"user-rest-api/internal/adapter/repository/instrumented"
	"user-rest-api/internal/config"
	"user-rest-api/internal/observability"
	"user-rest-api/internal/usecase/user"
	redisclient "user-rest-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	RedisClient   *redisclient.Client
	Registry      *prometheus.Registry
	Prom          *observability.Prom
	UserUC        user.Usecase
	RateLimiter   *middleware.RateLimiter
	GinHandler    *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Prom = observability.NewProm(c.Registry)

	// repository chain: gorm -> metrics -> cache
	var userCache cache.UserCache
	if rdb != nil {
		userCache = cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
	}
	dbRepo := instrumented.NewUserRepository(postgres.NewUserRepoPG(db, l), c.Prom)
	repo := cached.NewCachedUserRepository(dbRepo, userCache, l)

	c.UserUC = user.New(repo, l)

	if rdb != nil {
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l, c.Prom)
	c.HealthHandler = ginhandler.NewHealthHandler(c.pingDB, cfg.Logger.ServiceName)

	return c, nil
}

func (c *Container) pingDB(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
