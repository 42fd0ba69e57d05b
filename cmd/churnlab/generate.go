package main

import (
	"fmt"

	"github.com/paveg/churnlab/internal/io"
	"github.com/paveg/churnlab/internal/pipeline"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		out  string
		head int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the corrupted dataset without fitting models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			df, err := pipeline.Generate(cmd.Context(), cfg, pipeline.WithLogger(opts.logger(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out == "" {
				fmt.Fprint(w, df.Head(head))
				return nil
			}
			if err := io.WriteFile(out, df); err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %d rows to %s\n", df.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the dataset to a .csv or .parquet file")
	cmd.Flags().IntVar(&head, "head", 5, "rows to preview when --out is not set")
	return cmd
}
