// ABOUTME: Serve command runs the HTTP API
// ABOUTME: Shuts down gracefully on interrupt
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/shopassist/internal/app"
	"github.com/harper/shopassist/internal/server"
	"github.com/harper/shopassist/internal/util"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant over HTTP",
		Long: `Serve the assistant over HTTP.

Routes:
  POST   /api/v1/sessions                 start a conversation
  GET    /api/v1/sessions                 list conversations
  POST   /api/v1/sessions/{id}/messages   send a message
  POST   /api/v1/sessions/{id}/reset      reset a conversation
  GET    /api/v1/sessions/{id}/history    read a conversation
  DELETE /api/v1/sessions/{id}            end a conversation
  POST   /api/v1/search                   search products
  GET    /healthz                         health check`,
		Example: `  shopassist serve
  shopassist serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides ASSISTANT_HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	logger, err := util.NewLogger(verbose || cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.LoadCatalog(ctx, false); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	return server.New(a.Sessions, a, logger.Named("http")).ListenAndServe(ctx, cfg.HTTPAddr)
}
