package main

import (
	"fmt"

	"github.com/paveg/churnlab/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Info()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Short())
				return
			}
			fmt.Fprint(cmd.OutOrStdout(), info.String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}
