// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"eca-morph/internal/config"
	"eca-morph/internal/logging"
	"eca-morph/internal/metrics"
	"eca-morph/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultMaxCells bounds size*(evolutions+1) for one request.
const DefaultMaxCells = 4 << 20

// Server serves the catalog, generate and morph endpoints.
type Server struct {
	runner   *service.Runner
	registry *metrics.Registry
	base     config.Config
	maxCells int
}

// New builds a server. base supplies every field a request leaves unset.
func New(runner *service.Runner, registry *metrics.Registry, base config.Config) *Server {
	return &Server{runner: runner, registry: registry, base: base, maxCells: DefaultMaxCells}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware("eca-morph"), requestLogger())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.registry != nil {
		r.GET("/metrics", gin.WrapH(s.registry.Handler()))
	}
	api := r.Group("/api")
	api.GET("/catalog", s.handleCatalog)
	api.POST("/generate", s.handleGenerate)
	api.POST("/morph", s.handleMorph)
	api.GET("/runs/:id", s.handleRun)
	return r
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.Logger().Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		logging.Logger().Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(began))
	}
}
