package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"networth/internal/backend"
	"networth/internal/cli"
	"networth/internal/config"
	"networth/internal/core"
	"networth/internal/log"
)

// app is the state shared by one command invocation.
type app struct {
	dataBackend string
	dbPath      string
	logLevel    string

	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
}

func Execute() error {
	root, a := newRootCmd()
	err := root.Execute()
	return errors.Join(err, a.close())
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:          "networth",
		Short:        "Compensation and tax calculator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig(a.overrides)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.SlogLevel())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.dataBackend, "backend", "", "job store backend: memory or sqlite (default $DATA_BACKEND)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")

	root.AddCommand(taxCmd(a), vestCmd(a), compCmd(a), jobCmd(a), projectCmd(a))
	return root, a
}

func (a *app) overrides(c *config.Config) {
	if a.dataBackend != "" {
		c.DataBackend = a.dataBackend
	}
	if a.dbPath != "" {
		c.SQLiteDBPath = a.dbPath
		if a.dataBackend == "" {
			c.DataBackend = string(backend.SQLiteBackend)
		}
	}
	if a.logLevel != "" {
		c.LogLevel = a.logLevel
	}
}

// open creates the job backend on first use.
func (a *app) open(ctx context.Context) (*backend.BackendResult, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	a.backend = result
	return result, nil
}

func (a *app) close() error {
	if a.backend == nil || a.backend.Cleanup == nil {
		return nil
	}
	err := a.backend.Cleanup()
	a.backend = nil
	return err
}

// readJSON decodes a JSON file into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// period resolves --start and --end, defaulting to the configured tax year.
func (a *app) period(start, end string) (core.Date, core.Date, error) {
	s := core.NewDate(a.cfg.TaxYear, 1, 1)
	e := core.NewDate(a.cfg.TaxYear+1, 1, 1)
	var err error
	if start != "" {
		if s, err = core.ParseDate(start); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("--start: %w", err)
		}
	}
	if end != "" {
		if e, err = core.ParseDate(end); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("--end: %w", err)
		}
	}
	if e.Before(s) {
		return core.Date{}, core.Date{}, core.Invalid("--end %s is before --start %s", e, s)
	}
	return s, e, nil
}

func addPeriodFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "period start, YYYY-MM-DD (default Jan 1 of $TAX_YEAR)")
	cmd.Flags().StringVar(end, "end", "", "period end, YYYY-MM-DD (default Jan 1 of the following year)")
}
