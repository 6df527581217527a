package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "business-dashboard/internal/adapters/web"
	"business-dashboard/internal/bootstrap"
	"business-dashboard/internal/config"
	"business-dashboard/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("dashboard-server")
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
	lg.Info("starting", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer deps.Close()

	handler := webAdapter.NewHandler(deps.Service, webAdapter.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         deps.Tokens,
		Metrics:        deps.Metrics,
		Logger:         lg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat answers stream for as long as the model takes.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
