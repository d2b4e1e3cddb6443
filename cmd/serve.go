package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"devkit-mcp/internal/config"
	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/sandbox"
	"devkit-mcp/internal/security"
	"devkit-mcp/internal/server"
	"devkit-mcp/internal/toolkit"
	"devkit-mcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdio (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe resolves configuration, assembles the substrate and serves MCP on
// stdio until the transport closes or a termination signal arrives.
func runServe(parent context.Context) error {
	cfg, err := config.Load(rootFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	box, err := sandbox.New(cfg.Root, cfg.MaxReadBytes, logger.With("component", "sandbox"))
	if err != nil {
		return fmt.Errorf("creating sandbox: %w", err)
	}
	run, err := runner.New(cfg.Root, cfg.CommandTimeout, logger.With("component", "runner"))
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	deps := tools.Deps{
		Sandbox:    box,
		Runner:     run,
		Validator:  security.NewCommand(logger.With("component", "security")),
		SearchTool: cfg.SearchTool,
		Logger:     logger,
	}

	registry := toolkit.NewRegistry(logger.With("component", "registry"))
	if err := tools.Register(registry, deps); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}
	resources := toolkit.NewResources(logger.With("component", "resources"))
	if err := tools.RegisterResources(resources, deps); err != nil {
		return fmt.Errorf("registering resources: %w", err)
	}

	srv, err := server.NewServer(server.Config{
		Name:      "devkit",
		Version:   Version,
		Registry:  registry,
		Resources: resources,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info("devkit-mcp ready",
		"version", Version,
		"root", cfg.Root,
		"tools", registry.Len(),
		"transport", "stdio")

	if err := srv.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("devkit-mcp shut down")
	return nil
}
