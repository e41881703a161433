package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for methodstatus.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methodstatus",
		Short: "Release status reports for business-process model repositories",
		Long: `methodstatus walks a business-process model repository snapshot and reports
the release status of its solutions.

For every selected solution it counts the work packages and assets tagged with
the configured release and how many of them are released, and lists the
solution's maturity.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
