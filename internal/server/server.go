// Package server configures the HTTP server and routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/config"
	"github.com/fleveque/ficha-service/internal/middleware"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	logger *zap.Logger
	http   *http.Server
}

// New creates and configures a new Server.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Recovery middleware catches panics and returns 500 instead of crashing.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	// Uploads beyond this spill to temp files instead of memory.
	router.MaxMultipartMemory = 32 << 20

	RegisterRoutes(router, cfg, deps, logger)

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:        cfg.Server.Address(),
			Handler:     router,
			ReadTimeout: 60 * time.Second,
			// Video exports render every slide and run ffmpeg before the
			// first byte is written.
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins listening for HTTP requests. This blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("address", s.cfg.Server.Address()))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}

// Router returns the underlying Gin engine (useful for testing).
func (s *Server) Router() *gin.Engine {
	return s.router
}
