// Command mcp-server serves the helper tools to an MCP client over stdio.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/app"
	"github.com/pulmo-helper/internal/config"
	"github.com/pulmo-helper/internal/logging"
	"github.com/pulmo-helper/internal/mcp"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pulmo-helper MCP server: %v", err)
	}
}

func run() error {
	configManager, err := config.NewManager()
	if err != nil {
		return err
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := configManager.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg := configManager.GetConfig()

	// stdout carries the protocol
	logger := logging.New(cfg.Logging)
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	helper, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize helper: %w", err)
	}
	defer helper.Close()
	if helper.LoadErr != nil {
		logger.WithError(helper.LoadErr).Warn("Rule table unavailable, rule tools will return errors")
	}

	logger.WithFields(logrus.Fields{
		"config_file": configManager.ConfigFileUsed(),
		"data_dir":    cfg.DataDir,
		"version":     cfg.MCP.ServerVersion,
	}).Info("Starting MCP server")

	if err := mcp.NewServer(helper).Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
