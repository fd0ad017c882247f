package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vram-calculator/api/rest/server"
	"vram-calculator/config"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.ServerPort = port
			}
			config.SetupLogging(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default $SERVER_PORT or 8080)")
	return cmd
}
