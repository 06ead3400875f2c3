package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	linksHTTP "github.com/allisson/securelink/internal/links/http"
	"github.com/allisson/securelink/internal/metrics"
)

// Server represents the main HTTP API server.
type Server struct {
	redisClient *redis.Client
	router      *gin.Engine
	server      *http.Server
	logger      *slog.Logger
	host        string
	port        int

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewServer creates a new HTTP server. The Redis client is used only by the
// readiness probe; route registration happens in SetupRouter.
func NewServer(
	redisClient *redis.Client,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		redisClient:  redisClient,
		logger:       logger,
		host:         host,
		port:         port,
		readTimeout:  15 * time.Second,
		writeTimeout: 15 * time.Second,
	}
}

// SetTimeouts overrides the default read and write timeouts. Must be called
// before Start.
func (s *Server) SetTimeouts(read, write time.Duration) {
	if read > 0 {
		s.readTimeout = read
	}
	if write > 0 {
		s.writeTimeout = write
	}
}

// RouterConfig carries the handlers and middleware options for route registration.
type RouterConfig struct {
	LinkHandler      *linksHTTP.LinkHandler
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSEnabled      bool
	CORSAllowOrigins string
}

// SetupRouter builds the Gin router with middleware and registers all routes.
// The /metrics endpoint is deliberately NOT registered here; it lives on the
// separate metrics server so it is never exposed on the public port.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/api/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/links", cfg.LinkHandler.GenerateHandler)
	v1.GET("/links/:code", cfg.LinkHandler.ValidateHandler)
	v1.DELETE("/links/:code", cfg.LinkHandler.RevokeHandler)

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The store is
// the only hard dependency, so readiness is a Redis ping.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	ready := true
	if s.redisClient == nil {
		components["redis"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["redis"] = "error"
			ready = false
		} else {
			components["redis"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// GetHandler returns the router as an http.Handler. Useful for driving the
// full middleware and routing stack from httptest servers.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
