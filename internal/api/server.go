package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/eshaffer321/statement-reconciler/internal/api/handlers"
	"github.com/eshaffer321/statement-reconciler/internal/api/middleware"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string

	// RateLimitPerSecond and RateBurst bound the endpoints that run the
	// engine. Zero disables the limit.
	RateLimitPerSecond float64
	RateBurst          int

	// ReportCacheTTL is how long GET report responses are cached.
	// Zero disables the cache.
	ReportCacheTTL time.Duration
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:               8080,
		AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		RateLimitPerSecond: 5,
		RateBurst:          10,
		ReportCacheTTL:     5 * time.Minute,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	service    handlers.ReconcileService
	cache      *cache.Cache
	limiter    *rate.Limiter
}

// NewServer creates a new API server.
func NewServer(cfg Config, service handlers.ReconcileService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = DefaultConfig().AllowedOrigins
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:  cfg,
		router:  gin.New(),
		logger:  logger,
		service: service,
	}
	if cfg.ReportCacheTTL > 0 {
		s.cache = cache.New(cfg.ReportCacheTTL, 2*cfg.ReportCacheTTL)
	}
	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Get)

	limited := middleware.RateLimit(s.limiter, s.logger)

	api := s.router.Group("/api")
	{
		// Reconciliation reports
		reconciliations := handlers.NewReconciliationsHandler(s.service, s.cache, s.logger)
		api.POST("/reconciliations", limited, reconciliations.Create)
		api.GET("/reconciliations", reconciliations.List)
		api.GET("/reconciliations/:id", reconciliations.Get)
		api.POST("/reconciliations/:id/resolutions", reconciliations.Resolve)

		// Duplicate detection
		dups := handlers.NewDuplicatesHandler(s.service, s.logger)
		api.POST("/duplicates/detect", limited, dups.Detect)
		api.POST("/duplicates/suppressions", dups.Suppress)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
