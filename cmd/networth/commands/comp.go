package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"networth/internal/compensation"
	"networth/internal/core"
	"networth/internal/tax"
)

func compCmd(a *app) *cobra.Command {
	var (
		start, end string
		withTax    bool
	)
	cmd := &cobra.Command{
		Use:   "comp <package.json>",
		Short: "Break down a compensation package over a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, e, err := a.period(start, end)
			if err != nil {
				return err
			}
			var pkg compensation.Package
			if err := readJSON(args[0], &pkg); err != nil {
				return err
			}
			if err := pkg.Validate(); err != nil {
				return err
			}
			b, err := pkg.Breakdown(s, e)
			if err != nil {
				return err
			}
			if err := printBreakdown(cmd.OutOrStdout(), pkg.Currency, b); err != nil {
				return err
			}
			if withTax {
				return a.printTax(cmd.OutOrStdout(), s, b)
			}
			return nil
		},
	}
	addPeriodFlags(cmd, &start, &end)
	cmd.Flags().BoolVar(&withTax, "tax", false, "estimate tax on the total with the configured filing status and state")
	return cmd
}

func printBreakdown(out io.Writer, code core.CurrencyCode, b compensation.Breakdown) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Base salary\t%s\t%s\n", b.Income.StringFixed(code.Decimals()), code)
	fmt.Fprintf(w, "Bonuses\t%s\t%s\n", b.Bonuses.StringFixed(code.Decimals()), code)
	fmt.Fprintf(w, "Stock grants\t%s\t%s\n", b.StockGrants.StringFixed(code.Decimals()), code)
	fmt.Fprintf(w, "Signing bonuses\t%s\t%s\n", b.SigningBonuses.StringFixed(code.Decimals()), code)
	fmt.Fprintf(w, "Total\t%s\t%s\n", b.Total.StringFixed(code.Decimals()), code)
	return w.Flush()
}

// printTax estimates tax on the breakdown total for the year the period
// starts in.
func (a *app) printTax(out io.Writer, start core.Date, b compensation.Breakdown) error {
	calc, err := tax.New(start.Year(), tax.FilingStatus(a.cfg.FilingStatus), a.cfg.TaxState)
	if err != nil {
		return err
	}
	bill := calc.CalculateTax(b.Total)
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("tax on %s: %w", b.Total, err)
	}
	fmt.Fprintf(out, "Estimated tax (%d %s %s): federal %s, state %s, total %s\n",
		calc.Year(), calc.FilingStatus(), calc.State(),
		bill.Federal.StringFixed(2), bill.State.StringFixed(2), bill.Total().StringFixed(2))
	return nil
}
