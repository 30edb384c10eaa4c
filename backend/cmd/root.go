package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the yptstats command tree. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yptstats",
		Short:         "Study statistics for YPT accounts linked through one-time groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newGroupsCmd())
	return root
}
