package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"business-dashboard/internal/adapters/cli"
	"business-dashboard/internal/adapters/repl"
	"business-dashboard/internal/app"
	"business-dashboard/internal/bootstrap"
	"business-dashboard/internal/config"
	"business-dashboard/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("dashboard-cli")
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

	args := os.Args[1:]
	var opts []app.Option
	seed, err := cli.SeedFromArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if seed != nil {
		opts = append(opts, app.WithSeed(*seed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.New(ctx, cfg, lg, opts...)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer deps.Close()

	if len(args) == 0 {
		repl.Run(ctx, deps.Service, bufio.NewReader(os.Stdin), os.Stdout)
		return
	}

	if err := cli.Run(ctx, deps.Service, deps.Tokens, args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		deps.Close()
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
