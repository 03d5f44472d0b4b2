package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"networth/internal/amqp"
	"networth/internal/cache"
	"networth/internal/cli"
	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"
	"networth/internal/log"
)

func jobCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage stored jobs",
	}
	cmd.AddCommand(
		jobCreateCmd(a),
		jobGetCmd(a),
		jobListCmd(a),
		jobDeleteCmd(a),
		jobCompCmd(a),
		jobSummaryCmd(a),
		jobIncomeCmd(a),
		jobWatchCmd(a),
	)
	return cmd
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid job id %q: %w", s, err)
	}
	return id, nil
}

func jobCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <job.json>",
		Short: "Store a job read from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job income.Job
			if err := readJSON(args[0], &job); err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Service.CreateJob(cmd.Context(), &job); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), job.ID)
			return nil
		},
	}
}

func jobGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			job, err := b.Service.GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			fmt.Fprintln(cmd.OutOrStdout(), job)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON")
	return cmd
}

func jobListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			list, err := b.Service.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tSTART")
			for _, job := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.ID, job.Name, job.Package.Currency, job.Package.StartDate)
			}
			return w.Flush()
		},
	}
}

func jobDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Service.DeleteJob(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func jobCompCmd(a *app) *cobra.Command {
	var (
		start, end string
		withTax    bool
	)
	cmd := &cobra.Command{
		Use:   "comp <id>",
		Short: "Break down a stored job's compensation over a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, e, err := a.period(start, end)
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			job, err := b.Service.GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			breakdown, err := b.Service.Compensation(cmd.Context(), id, s, e)
			if err != nil {
				return err
			}
			if err := printBreakdown(cmd.OutOrStdout(), job.Package.Currency, breakdown); err != nil {
				return err
			}
			if withTax {
				return a.printTax(cmd.OutOrStdout(), s, breakdown)
			}
			return nil
		},
	}
	addPeriodFlags(cmd, &start, &end)
	cmd.Flags().BoolVar(&withTax, "tax", false, "estimate tax on the total with the configured filing status and state")
	return cmd
}

func jobSummaryCmd(a *app) *cobra.Command {
	var (
		start, end string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise every stored job over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, e, err := a.period(start, end)
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := b.Service.SummarizeAll(cmd.Context(), s, e)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, summary)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSALARY\tBONUSES\tSTOCK\tSIGNING\tTOTAL\tCURRENCY")
			for _, js := range summary.Jobs {
				d := js.Currency.Decimals()
				bd := js.Breakdown
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", js.Name,
					bd.Income.StringFixed(d), bd.Bonuses.StringFixed(d), bd.StockGrants.StringFixed(d),
					bd.SigningBonuses.StringFixed(d), bd.Total.StringFixed(d), js.Currency)
			}
			codes := make([]core.CurrencyCode, 0, len(summary.Totals))
			for code := range summary.Totals {
				codes = append(codes, code)
			}
			slices.Sort(codes)
			for _, code := range codes {
				fmt.Fprintf(w, "total\t\t\t\t\t%s\t%s\n", summary.Totals[code].StringFixed(code.Decimals()), code)
			}
			return w.Flush()
		},
	}
	addPeriodFlags(cmd, &start, &end)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func jobIncomeCmd(a *app) *cobra.Command {
	var (
		start, end string
		currency   string
	)
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Sum prorated base salary across stored jobs paid in one currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, e, err := a.period(start, end)
			if err != nil {
				return err
			}
			if currency == "" {
				currency = a.cfg.Currency
			}
			code, err := core.ParseCurrencyCode(currency)
			if err != nil {
				return err
			}
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			total, err := b.Service.TotalIncome(cmd.Context(), code, s, e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", total.StringFixed(code.Decimals()), code)
			return nil
		},
	}
	addPeriodFlags(cmd, &start, &end)
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (default $CURRENCY)")
	return cmd
}

// jobWatchCmd follows job events from the broker and keeps the totals cache
// warm for the default period until interrupted.
func jobWatchCmd(a *app) *cobra.Command {
	var cleanupInterval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow job change events from the message broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if b.Events == nil {
				return errors.New("job watch needs a reachable broker: set AMQP_URL")
			}
			s, e, err := a.period("", "")
			if err != nil {
				return err
			}

			manager := cache.NewManager(a.logger.WithComponent(log.ComponentCache).Logger)
			if c := b.Service.Cache(); c != nil {
				manager.Register(c)
			}

			parent, stop := context.WithCancel(cmd.Context())
			defer stop()
			manager.Start(parent, cleanupInterval)
			ctx, done := cli.GracefulShutdown(parent, a.logger, 10*time.Second, manager.Stop)

			out := cmd.OutOrStdout()
			err = b.Events.ConsumeJobEvents(ctx, func(ev *amqp.JobEvent) error {
				if ev.Action == amqp.JobDeleted {
					fmt.Fprintf(out, "%s %s %s\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.JobID)
					return nil
				}
				breakdown, err := b.Service.Compensation(ctx, ev.JobID, s, e)
				if errors.Is(err, jobs.ErrNotFound) {
					// Deleted after the event was published.
					fmt.Fprintf(out, "%s %s %s (gone)\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.JobID)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s total %s\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.JobID, breakdown.Total)
				return nil
			})
			stop()
			cli.WaitForShutdown(ctx, done)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&cleanupInterval, "cache-cleanup", time.Minute, "interval between expired cache entry sweeps")
	return cmd
}
