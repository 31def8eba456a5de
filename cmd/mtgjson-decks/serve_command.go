package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtgjson-decks/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored decks and referral redirects over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			server := api.NewServer(&api.Config{Port: port, Logger: logger}, store)
			return server.Run(signalCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (defaults to server.port)")

	return cmd
}
