package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabricflow/fabricflow/application/usecase/audit"
	"github.com/fabricflow/fabricflow/infrastructure/adapter/natspub"
	"github.com/fabricflow/fabricflow/infrastructure/adapter/postgres"
	"github.com/fabricflow/fabricflow/infrastructure/adapter/sqlaudit"
	"github.com/fabricflow/fabricflow/infrastructure/adapter/sqlite"
	"github.com/fabricflow/fabricflow/infrastructure/config"
	"github.com/fabricflow/fabricflow/infrastructure/http/handler"
	"github.com/fabricflow/fabricflow/infrastructure/http/server"
	"github.com/fabricflow/fabricflow/infrastructure/service/jwt"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
	"github.com/fabricflow/fabricflow/infrastructure/service/session"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logConfig := logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "audit-service",
	}
	logrusLogger := logger.NewLogrus(logConfig)
	structuredLogger := logger.NewFromLogrus(logrusLogger, logConfig.ServiceName)
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":         cfg.Environment,
		"audit_store": cfg.AuditStore,
	})

	// Connect to the audit store
	db, repo, err := openAuditStore(ctx, cfg)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open audit store", err, map[string]interface{}{
			"audit_store": cfg.AuditStore,
		})
		log.Fatalf("Failed to open audit store: %v", err)
	}
	defer db.Close()
	structuredLogger.Info(ctx, "Audit store ready", map[string]interface{}{
		"audit_store": cfg.AuditStore,
	})

	// Identity sources for actor resolution
	sessions, err := session.NewSessionLookup(session.SessionStoreConfig{
		Enabled:   cfg.SessionLookupEnabled,
		RedisURL:  cfg.RedisURL,
		KeyPrefix: cfg.SessionKeyPrefix,
		Timeout:   cfg.SessionTimeout,
	}, logrusLogger)
	if err != nil {
		structuredLogger.Warn(ctx, "Session lookup unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		sessions = nil
	}

	claims, err := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	if !claims.Verifying() {
		structuredLogger.Warn(ctx, "JWT_SECRET not set, token claims are read without verification", nil)
	}

	// Audit writers: the store, plus NATS when configured
	writers := audit.FanOutWriter{repo}
	if cfg.NATSURL != "" {
		publisher, err := natspub.Connect(natspub.Config{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		}, logrusLogger)
		if err != nil {
			structuredLogger.Warn(ctx, "Audit publisher unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer publisher.Close()
			writers = append(writers, publisher)
		}
	}

	resolver := audit.NewActorResolver(sessions, claims, structuredLogger)
	auditLogger := audit.NewAuditLogger(resolver, writers, structuredLogger)
	queryUseCase := audit.NewAuditQueryUseCase(repo)

	srv := server.New(server.Config{
		Addr:                 cfg.Address(),
		CorrelationIDHeader:  cfg.LogCorrelationIDHeader,
		CORSEnabled:          cfg.CORSEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
	}, handler.NewAuditHandler(queryUseCase, auditLogger, structuredLogger), structuredLogger)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Address(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}

	// Drain in-flight audit writes before closing the store
	auditLogger.Wait()
	structuredLogger.Info(ctx, "Server exited", nil)
}

func openAuditStore(ctx context.Context, cfg *config.Config) (*sql.DB, *sqlaudit.Repository, error) {
	switch cfg.AuditStore {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewAuditRepository(db), nil
	default:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewAuditRepository(db), nil
	}
}
