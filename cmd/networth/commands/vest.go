package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"networth/internal/compensation"
)

func vestCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "vest <grant.json>",
		Short: "Print the vesting schedule of a stock grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var grant compensation.StockGrant
			if err := readJSON(args[0], &grant); err != nil {
				return err
			}
			events, err := grant.CalculateVestingSchedule()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, events)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSHARES\tVALUE")
			var shares int64
			for _, e := range events {
				shares += e.NumShares
				fmt.Fprintf(w, "%s\t%d\t%s\n", e.Date, e.NumShares, e.Amount.Format())
			}
			fmt.Fprintf(w, "total\t%d\t\n", shares)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON")
	return cmd
}
