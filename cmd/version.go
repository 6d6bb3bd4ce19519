// File: cmd/version.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/results"
)

// Version is the application version.
// This value is intended to be set at build time using ldflags.
// Example: go build -ldflags "-X github.com/sewardsheng/sql-analyzer-cli-sub008/cmd.Version=1.0.0"
var Version = "1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI and report engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sqlanalyzer %s (report engine %s)\n", Version, results.EngineVersion)
			return err
		},
	}
}
