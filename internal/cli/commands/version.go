package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the xmirlint version; it is stamped on every defect and run.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xmirlint v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "XMIR defect detector built with %s\n", runtime.Version())
		},
	}
}
