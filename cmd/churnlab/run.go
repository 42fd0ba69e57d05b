package main

import (
	"github.com/paveg/churnlab/internal/pipeline"
	"github.com/paveg/churnlab/internal/report"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger := opts.logger(cmd.ErrOrStderr())

			rep, err := pipeline.Run(cmd.Context(), cfg, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			printer := report.NewPrinter(cmd.OutOrStdout(), report.PrinterOptions{
				JSON:    opts.json,
				NoColor: opts.noColor,
			})
			return printer.Print(rep)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	f.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	f.StringVar(&opts.plotsDir, "plots-dir", "", "directory for PNG charts (overrides config)")
	return cmd
}
