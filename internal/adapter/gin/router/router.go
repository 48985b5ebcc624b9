package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-rest-api/api/swagger"
	"user-rest-api/internal/adapter/gin/handler"
	"user-rest-api/internal/adapter/gin/middleware"
	"user-rest-api/internal/observability"
	"user-rest-api/pkg/logger"
)

// Options carries everything the router wires. Only UserHandler and Log
// are required.
type Options struct {
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	RateLimiter   *middleware.RateLimiter
	Prom          *observability.Prom
	Gatherer      prometheus.Gatherer
	Log           *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(opts.Log))
	router.Use(middleware.Logger(opts.Log))
	if opts.Prom != nil {
		router.Use(opts.Prom.GinHandleMiddleware())
	}

	router.GET("/", opts.UserHandler.Home)

	health := opts.HealthHandler
	if health == nil {
		health = handler.NewHealthHandler(nil, "")
	}
	router.GET("/health", health.Health)

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET(swagger.Path, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", swagger.Spec)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swagger.Path))))

	users := router.Group("/users")
	users.Use(opts.RateLimiter.Middleware())
	{
		users.GET("", opts.UserHandler.Index)
		users.GET("/:id", opts.UserHandler.Show)
		users.POST("", opts.UserHandler.Create)
		users.PUT("", opts.UserHandler.Update)
		users.DELETE("", opts.UserHandler.Delete)
	}

	return router
}
