package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/coursekit/internal/services"
)

func (c *cli) reconcileCmd() *cobra.Command {
	var req services.ReconcileRequest
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply a lesson spreadsheet to a course snapshot",
		Long: `Reads the course snapshot and the lesson spreadsheet export, rewrites legacy
unit ids, replaces legacy daily lessons with the spreadsheet lessons, recomputes
unit summaries and lesson counts, and writes the result once.

Locations are file paths, file:// URIs or gs://bucket/object URIs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.app.Services.Reconciler.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&req.JSONURI, "json", "", "input course snapshot")
	cmd.Flags().StringVar(&req.CSVURI, "csv", "", "input lesson spreadsheet")
	cmd.Flags().StringVar(&req.OutURI, "out", "", "output course snapshot")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "run every stage but skip the write")
	_ = cmd.MarkFlagRequired("json")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
