package main

import (
	"context"
	"flag"
	"strings"

	"github.com/fabricflow/fabricflow/infrastructure/adapter/postgres"
	"github.com/fabricflow/fabricflow/infrastructure/config"
	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
	"github.com/fabricflow/fabricflow/migrations"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg, err := config.Load()
	log := logger.NewLogrus(logger.LoggerConfig{Level: "info", Format: "text"})
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.AuditStore != config.StorePostgres {
		log.WithField("audit_store", cfg.AuditStore).Fatal("Migrations only apply to AUDIT_STORE=postgres; the sqlite store creates its schema on open")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect database")
	}
	defer db.Close()

	migrator := postgres.NewMigrator(db, migrations.FS, log)
	switch strings.ToLower(*mode) {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
	if err != nil {
		log.WithError(err).Fatalf("Migration %s failed", *mode)
	}
	log.Infof("Migration %s completed successfully", *mode)
}
