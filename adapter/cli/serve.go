package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/discipline/adapter/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API for check-ins, stats and calendar export.

Examples:
  discipline serve
  discipline serve --addr 0.0.0.0:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		srvCfg := api.DefaultServerConfig()
		if app.Config != nil && app.Config.APIAddr != "" {
			srvCfg.Addr = app.Config.APIAddr
		}
		if serveAddr != "" {
			srvCfg.Addr = serveAddr
		}

		handler := api.NewTrainingHandler(api.TrainingHandlerConfig{
			Store:  app.Store,
			Now:    app.Now,
			Logger: logger,
		})
		server := api.NewServer(srvCfg, handler, logger)

		ctx := cmd.Context()
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: API_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
