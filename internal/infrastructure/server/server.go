// Package server wires configuration, logging, metrics, the session
// manager and the API routes into one runnable HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/glasspane/dashboard/internal/api/http"
	"github.com/glasspane/dashboard/internal/api/middleware"
	"github.com/glasspane/dashboard/internal/api/ws"
	"github.com/glasspane/dashboard/internal/domain/session"
	"github.com/glasspane/dashboard/internal/infrastructure/config"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
	"github.com/glasspane/dashboard/internal/infrastructure/tracing"
	"github.com/glasspane/dashboard/internal/platform"
	"github.com/glasspane/dashboard/internal/report"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New creates a server instance from configuration.
func New(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	hostPlatform := platform.Platform(cfg.Platform.Name)
	if !hostPlatform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", cfg.Platform.Name)
	}

	logger.Info("Initializing privacy dashboard service",
		zap.String("port", cfg.Server.Port),
		zap.String("platform", string(hostPlatform)),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("dashboard", logger.Logger)

	matrix := platform.DefaultMatrix()
	if cfg.Platform.CapabilitiesFile != "" {
		loaded, err := platform.LoadMatrix(cfg.Platform.CapabilitiesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load capability matrix: %w", err)
		}
		matrix = loaded
		logger.Info("Loaded capability matrix", zap.String("path", cfg.Platform.CapabilitiesFile))
	}

	sessions := session.NewManager(matrix, logger).WithMetrics(metrics)
	if cfg.Report.Enabled && cfg.Report.Endpoint != "" {
		forwarder := report.NewForwarder(cfg.Report.Endpoint, hostPlatform, logger).WithMetrics(metrics)
		sessions = sessions.WithReporter(forwarder)
		logger.Info("Breakage report forwarding enabled", zap.String("endpoint", cfg.Report.Endpoint))
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(sessions, cfg.Bridge.ReplyDeadline, logger)
	wsHandler := ws.NewHandler(sessions, hostPlatform, logger).WithMetrics(metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Host bridge
	router.GET("/bridge", wsHandler.HandleConnection)

	// Render layer
	router.GET("/tabs", handlers.ListTabs)
	router.GET("/tabs/:id/snapshot", handlers.GetSnapshot)
	router.GET("/tabs/:id/snapshot/wait", handlers.WaitSnapshot)
	router.POST("/tabs/:id/intents/protection", handlers.SetProtection)
	router.POST("/tabs/:id/intents/permission", handlers.SetPermission)
	router.POST("/tabs/:id/intents/open-settings", handlers.OpenSettings)
	router.POST("/tabs/:id/intents/open-url", handlers.OpenURL)
	router.POST("/tabs/:id/intents/report", handlers.SubmitReport)
	router.POST("/tabs/:id/intents/toggle-report/options", handlers.ToggleReportOptions)
	router.POST("/tabs/:id/intents/toggle-report/send", handlers.ToggleReportSend)
	router.POST("/tabs/:id/intents/toggle-report/reject", handlers.ToggleReportReject)
	router.POST("/tabs/:id/intents/toggle-report/disclosure", handlers.ToggleReportDisclosure)
	router.POST("/tabs/:id/intents/size", handlers.SetSize)
	router.POST("/tabs/:id/intents/close", handlers.CloseTab)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized")

	return &Server{
		router:   router,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	defer s.logger.Sync()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
	}
	return nil
}
