package main

import (
	"context"
	"errors"
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
		fmt.Fprintf(os.Stderr, "tutor start failed: %v\n", err)
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

	logger.InfoObj("tutor starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tutor, err := app.NewTutor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize tutor", "error", err)
		return err
	}
	defer tutor.Close()

	if err := tutor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("tutor run: %w", err)
	}

	return nil
}
