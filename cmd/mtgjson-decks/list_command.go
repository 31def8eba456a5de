package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListDecks(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No decks stored")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.Code,
					rec.Name,
					rec.Type,
					rec.ReleaseDate,
					strconv.Itoa(rec.CardCount),
					rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Code", "Name", "Type", "Released", "Cards", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
