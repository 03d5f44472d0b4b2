package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"networth/internal/core"
	"networth/internal/tax"
)

func taxCmd(a *app) *cobra.Command {
	var (
		year   int
		status string
		state  string
	)
	cmd := &cobra.Command{
		Use:   "tax <income>",
		Short: "Compute federal and state tax on an annual income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := core.ParseDecimal(args[0])
			if err != nil {
				return fmt.Errorf("income %q: %w", args[0], err)
			}
			if year == 0 {
				year = a.cfg.TaxYear
			}
			if status == "" {
				status = a.cfg.FilingStatus
			}
			if state == "" {
				state = a.cfg.TaxState
			}

			calc, err := tax.New(year, tax.FilingStatus(status), state)
			if err != nil {
				return err
			}
			bill := calc.CalculateTax(income)
			if err := bill.Validate(); err != nil {
				return fmt.Errorf("tax on %s: %w", income, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Federal (%d, %s): %s\n", calc.Year(), calc.FilingStatus(), bill.Federal.StringFixed(2))
			fmt.Fprintf(out, "State (%s %d):     %s\n", calc.State(), calc.StateYear(), bill.State.StringFixed(2))
			fmt.Fprintf(out, "Total:             %s\n", bill.Total().StringFixed(2))
			fmt.Fprintf(out, "Effective rate:    %s%%\n", calc.EffectiveRate(income).Shift(2).StringFixed(2))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "tax year (default $TAX_YEAR)")
	cmd.Flags().StringVar(&status, "status", "", "filing status (default $FILING_STATUS)")
	cmd.Flags().StringVar(&state, "state", "", "state code (default $TAX_STATE)")
	return cmd
}
