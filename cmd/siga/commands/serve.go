package commands

import (
	"fatec-api/internal/server"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 0, "The port to listen on, overrides server.port in the config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves the portal's data over http, accounts are addressed by bearer tokens.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := state.config.Server.Port
		if *servePort > 0 {
			port = *servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s := server.New(server.Options{
			Client:       state.config.ClientOptions(nil),
			AllowOrigins: state.config.Server.AllowOrigins,
			SessionTtl:   time.Duration(state.config.Server.SessionTtlMinutes) * time.Minute,
		}, state.clock, state.tel)

		addr := fmt.Sprintf(":%d", port)
		slog.Info("listening", "addr", addr)
		return s.Run(ctx, addr)
	},
}
