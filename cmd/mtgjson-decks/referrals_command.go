package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtgjson-decks/internal/referral"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage"
)

func newReferralsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "referrals SETFILE...",
		Short: "Extract referral redirects from built set files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var store *storage.Service
			if cfg.Paths.Database != "" {
				store, err = ctx.openStore()
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			sink := referral.NewFileSink(cfg.ReferralMapPath())
			total := 0
			var failed []error

			for _, path := range args {
				set, err := referral.LoadSet(path)
				if err != nil {
					logger.Error("Skipping set file", "path", path, "error", err)
					failed = append(failed, err)
					continue
				}

				pairs := referral.Extract(set)
				if err := sink.Append(pairs); err != nil {
					return err
				}
				if store != nil {
					if err := store.StoreReferrals(cmd.Context(), pairs); err != nil {
						return err
					}
				}

				logger.Info("Referrals extracted", "set", set.Code, "pairs", len(pairs))
				total += len(pairs)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d referral entries to %s\n", total, sink.Path())
			return errors.Join(failed...)
		},
	}
}
