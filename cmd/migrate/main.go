package main

import (
	"context"
	"log"
	"time"

	"business-dashboard/internal/config"
	"business-dashboard/internal/db"
	"business-dashboard/internal/logger"
	"business-dashboard/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.Init(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.DatabaseURL == "" {
		lg.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, migrations.FS, lg)
	if err != nil {
		lg.Fatal("migrate", zap.Error(err))
	}
	lg.Info("migrations processed", zap.Strings("applied", applied))
}
