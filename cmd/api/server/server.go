package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-rest-api/cmd/api/di"
	ginrouter "user-rest-api/internal/adapter/gin/router"
)

// Server owns the HTTP listener for the users API.
type Server struct {
	Logger *zap.Logger
	HTTP   *http.Server
	addr   string
}

// New builds the gin router from the container and wraps it in an
// http.Server listening on HTTP_PORT.
func New(c *di.Container) *Server {
	router := ginrouter.SetupRouter(ginrouter.Options{
		UserHandler:   c.GinHandler,
		HealthHandler: c.HealthHandler,
		RateLimiter:   c.RateLimiter,
		Prom:          c.Prom,
		Gatherer:      c.Registry,
		Log:           c.Logger,
	})

	addr := ":" + c.Config.App.HTTPPort
	c.Logger.Info("REST API configured", zap.String("address", addr))

	return &Server{
		Logger: c.Logger,
		addr:   addr,
		HTTP: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start listens and serves until Shutdown is called. A clean shutdown is
// not reported as an error.
func (s *Server) Start() error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.Logger.Info("REST API running", zap.String("address", lis.Addr().String()))

	if err := s.HTTP.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
