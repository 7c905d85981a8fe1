package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursekit/internal/data/runlog"
	"github.com/yungbote/coursekit/internal/pkg/dbctx"
	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
)

func (c *cli) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconcile runs from the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := c.app.Repos.ReconcileRuns
			if repo == nil {
				return fmt.Errorf("%w: run ledger is disabled", apperrors.ErrInvalidArgument)
			}
			rows, err := repo.ListRecent(dbctx.Context{Ctx: cmd.Context()}, limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tDURATION\tINPUT\tOUTPUT\tERROR")
			for _, r := range rows {
				out := r.Output
				if r.DryRun {
					out = "(dry run)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Status,
					r.Duration().Round(time.Millisecond), r.InputJSON, out, r.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", runlog.DefaultListLimit, "maximum number of runs to list")
	return cmd
}
