package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"adaptive-voice/internal/api/middleware"
	v1routes "adaptive-voice/internal/api/v1/routes"
	"adaptive-voice/internal/api/v1/services"
	appconfig "adaptive-voice/internal/app/config"
	"adaptive-voice/internal/app/metrics"
	"adaptive-voice/internal/app/network"
)

// Server is the HTTP front end of the recognition runtime.
type Server struct {
	config        appconfig.ServerConfig
	router        *gin.Engine
	httpServer    *http.Server
	sessions      *services.SessionManager
	sweepInterval time.Duration
	logger        *zap.Logger
}

// NewServer wires middleware, routes and the metrics endpoint.
func NewServer(
	cfg *appconfig.Config,
	sessions *services.SessionManager,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"sessions":  sessions.Count(),
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	container := &v1routes.ServiceContainer{
		Sessions:      sessions,
		NetworkTester: network.NewTester(cfg.Network, nil, logger),
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1routes.RegisterRoutes(v1, container)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Adaptive Voice Recognition API",
			"version": "1.0",
			"endpoints": gin.H{
				"health":   "/healthz",
				"metrics":  "/metrics",
				"sessions": "/api/v1/sessions",
				"probe":    "/api/v1/probe",
			},
		})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		config:        cfg.Server,
		router:        router,
		httpServer:    httpServer,
		sessions:      sessions,
		sweepInterval: cfg.Cache.SweepInterval,
		logger:        logger,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		zap.String("host", s.config.Host),
		zap.String("port", s.config.Port),
		zap.String("environment", s.config.Environment),
	)

	s.sessions.StartSweeper(s.sweepInterval)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown drains in-flight requests and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	s.sessions.Shutdown()
	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
