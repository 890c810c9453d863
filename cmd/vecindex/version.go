package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd returns the command that prints the build version.
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vecindex version %s\n", version)
		},
	}
}
