package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/remote"
	"tally/internal/tasklist"
	"tally/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level})
	if err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	timeout, _ := cfg.Timeout()
	client, err := remote.NewClient(cfg.BaseURL, timeout, log)
	if err != nil {
		fmt.Printf("failed to create store client: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks := tasklist.New(client, tasklist.WithLogger(log), tasklist.WithContext(ctx))
	log.Info("starting", zap.String("config", configPath), zap.String("base_url", cfg.BaseURL))
	if err := ui.Run(ctx, tasks, cfg, log); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
