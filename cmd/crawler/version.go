package main

import (
	"fmt"

	"github.com/alvmarrod/sidebar-weaver/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version subcommand
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sidebar-weaver v%s\n", version.Version)
		},
	}
}
