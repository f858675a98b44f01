package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidya-hq/vidya-tutor-client/internal/app"
	"github.com/vidya-hq/vidya-tutor-client/internal/config"
	"github.com/vidya-hq/vidya-tutor-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assess start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assessor, err := app.NewAssessor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize assessor", "error", err)
		return err
	}
	defer assessor.Close()

	if err := assessor.Run(ctx); err != nil {
		return fmt.Errorf("assessment run: %w", err)
	}

	return nil
}
