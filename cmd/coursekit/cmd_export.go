package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/coursekit/internal/migration/mockdata"
	"github.com/yungbote/coursekit/internal/services"
)

func (c *cli) exportCmd() *cobra.Command {
	var req services.ExportRequest
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a course snapshot's lessons as a lesson spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.app.Services.Exporter.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&req.JSONURI, "json", "", "input course snapshot")
	cmd.Flags().StringVar(&req.OutURI, "out", "", "output spreadsheet")
	_ = cmd.MarkFlagRequired("json")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (c *cli) mockCmd() *cobra.Command {
	var (
		req  services.MockRequest
		opts mockdata.Options
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate a legacy course snapshot and a matching lesson spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Options = opts
			rep, err := c.app.Services.Exporter.Mock(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&req.JSONURI, "out-json", "", "output course snapshot")
	cmd.Flags().StringVar(&req.CSVURI, "out-csv", "", "output lesson spreadsheet")
	cmd.Flags().IntVar(&opts.Weeks, "weeks", 2, "number of weeks after week 0")
	cmd.Flags().IntVar(&opts.Days, "days", 3, "lessons per week")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "qlzx", "program prefix used in ids")
	cmd.Flags().StringVar(&opts.Cohort, "cohort", "2728", "cohort suffix used in ids")
	_ = cmd.MarkFlagRequired("out-json")
	_ = cmd.MarkFlagRequired("out-csv")
	return cmd
}
