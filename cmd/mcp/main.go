package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/app"
	mcpinternal "github.com/felixgeelhaar/discipline/internal/mcp"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	if err := container.RestoreReminder(ctx); err != nil {
		logger.Warn("failed to restore reminder", "error", err)
	}

	err = mcpinternal.Serve(ctx, cfg, mcpinternal.NewCLIApp(container), logger)
	container.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
