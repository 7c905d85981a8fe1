package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursekit/internal/app"
)

type cli struct {
	configPath string
	logMode    string

	bootstrapLessonID string
	fallbackUnitID    string
	reviewLabel       string
	dailyPattern      string
	ledgerDSN         string

	app *app.App
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coursekit",
		Short:         "Reconcile course snapshots with lesson spreadsheet exports",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML config file (default: $COURSEKIT_CONFIG)")
	pf.StringVar(&c.logMode, "log-mode", "", "development|production|test (default: $LOG_MODE or development)")
	pf.StringVar(&c.bootstrapLessonID, "bootstrap-lesson", "", "bootstrap lesson id")
	pf.StringVar(&c.fallbackUnitID, "fallback-unit", "", "unit that receives lessons whose unit disappeared")
	pf.StringVar(&c.reviewLabel, "review-label", "", "name given to the last lesson of each unit")
	pf.StringVar(&c.dailyPattern, "daily-pattern", "", "regexp for legacy daily lesson ids")
	pf.StringVar(&c.ledgerDSN, "ledger-dsn", "", "run ledger DSN (sqlite path or postgres:// URL; \"off\" disables)")

	root.AddCommand(c.reconcileCmd(), c.exportCmd(), c.mockCmd(), c.runsCmd())
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	flags := cmd.Flags()
	a, err := app.New(cmd.Context(), app.Options{
		ConfigPath: c.configPath,
		LogMode:    c.logMode,
		Configure: func(cfg *app.Config) {
			if flags.Changed("bootstrap-lesson") {
				cfg.BootstrapLessonID = c.bootstrapLessonID
			}
			if flags.Changed("fallback-unit") {
				cfg.FallbackUnitID = c.fallbackUnitID
			}
			if flags.Changed("review-label") {
				cfg.ReviewLabel = c.reviewLabel
			}
			if flags.Changed("daily-pattern") {
				cfg.DailyPattern = c.dailyPattern
			}
			if flags.Changed("ledger-dsn") {
				cfg.LedgerDSN = c.ledgerDSN
			}
		},
	})
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
