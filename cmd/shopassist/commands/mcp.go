// ABOUTME: MCP command starts a Model Context Protocol server on stdio
// ABOUTME: Lets LLM agents hold shopping conversations and search the catalog
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/shopassist/internal/app"
	"github.com/harper/shopassist/internal/mcp"
	"github.com/harper/shopassist/internal/util"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the shopping assistant as an MCP (Model Context Protocol) server,
letting LLM agents chat with it and search the catalog via stdio.

Logs go to stderr at error level so stdout stays a clean protocol stream.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  shopassist mcp

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "shopassist": {
  #       "command": "shopassist",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := util.NewQuietLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.LoadCatalog(ctx, false); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"Shopping Assistant",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(true),
	)
	mcp.RegisterTools(server, a.Sessions, a, logger.Named("mcp"))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("mcp server stopped", zap.Error(err))
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
