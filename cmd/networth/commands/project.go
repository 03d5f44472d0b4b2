package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"networth/internal/log"
	"networth/internal/scenario"
)

func projectCmd(a *app) *cobra.Command {
	var (
		years  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "project <model.json>",
		Short: "Project net worth for a base scenario and its alternatives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if years < 0 {
				return fmt.Errorf("--years must not be negative, got %d", years)
			}
			var m scenario.Model
			if err := readJSON(args[0], &m); err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return err
			}
			projections := m.CompareScenarios(years)
			a.logger.Debug("Projected scenarios", log.FieldCount, len(projections), "years", years)
			if asJSON {
				return writeJSON(cmd, projections)
			}
			return printProjections(cmd.OutOrStdout(), projections, years)
		},
	}
	cmd.Flags().IntVar(&years, "years", 10, "number of years to project")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print projections as JSON")
	return cmd
}

func printProjections(out io.Writer, projections []scenario.Projection, years int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := []string{"Year"}
	for _, p := range projections {
		header = append(header, p.Scenario)
	}
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	for y := 0; y <= years; y++ {
		row := []string{fmt.Sprint(y)}
		for _, p := range projections {
			row = append(row, p.NetWorth[y].StringFixed(2))
		}
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	return w.Flush()
}
