package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/app"
	"github.com/patrickwarner/interstitial/internal/config"
	"github.com/patrickwarner/interstitial/internal/observability"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol, so logs go to stderr.
	logger, err := observability.InitLoggerWithService(cfg.ServiceName + "-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("interstitial-mcp")

	if err := run(logger, cfg); err != nil {
		logger.Error("Server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.New(ctx, cfg, logger, observability.NewNoOpRegistry())
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	defer pipeline.Close()

	tools := &InterstitialTools{
		coordinators: pipeline.Coordinators,
		loadTimeout:  cfg.AdNetworkTimeout * 2,
		logger:       logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "interstitial",
		Version: "1.0.0",
	}, nil)
	tools.register(server)

	// Keep a protocol trace for the error log.
	var logBuffer bytes.Buffer
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio", zap.Strings("units", pipeline.Coordinators.Units()))
	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		logger.Debug("mcp protocol trace", zap.String("mcp_logs", logBuffer.String()))
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
