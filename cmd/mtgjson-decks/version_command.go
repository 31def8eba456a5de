package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtgjson-decks/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mtgjson-decks %s\n", version.GetVersion())
			return nil
		},
	}
}
