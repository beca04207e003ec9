// Package mcp wires the "discipline mcp" command group.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/discipline/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/discipline/internal/mcp"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/spf13/cobra"
)

// Cmd groups the MCP subcommands; main adds it to the root command.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose check-ins, stats and reminders to MCP clients",
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an HTTP MCP server exposing the training.* tools.

Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireStore()
		if err != nil {
			return err
		}
		if app.Config == nil {
			return errors.New("config is required")
		}

		cfg := *app.Config
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))
		err = mcpinternal.Serve(cmd.Context(), &cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: MCP_ADDR)")
}
