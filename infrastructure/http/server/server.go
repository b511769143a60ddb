package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fabricflow/fabricflow/infrastructure/http/handler"
	"github.com/fabricflow/fabricflow/infrastructure/http/middleware"
	"github.com/fabricflow/fabricflow/infrastructure/http/response"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

// Config represents server configuration
type Config struct {
	Addr                 string
	CorrelationIDHeader  string
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger logger.Logger
}

// NewRouter wires the audit routes and middleware chain. CORS wraps the
// router so preflight requests are answered before route matching.
func NewRouter(cfg Config, auditHandler *handler.AuditHandler, log logger.Logger) http.Handler {
	router := mux.NewRouter()

	auditHandler.RegisterRoutes(router)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "healthy", map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CorrelationIDMiddleware(cfg.CorrelationIDHeader))
	router.Use(middleware.RequestLogMiddleware(log))
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		return middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)(router)
	}
	return router
}

func New(cfg Config, auditHandler *handler.AuditHandler, log logger.Logger) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	return &Server{
		logger: log,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg, auditHandler, log),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down server...", nil)
	return s.server.Shutdown(ctx)
}
