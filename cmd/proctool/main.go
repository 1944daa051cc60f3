package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartops/proctools/cmd/proctool/commands"
	"github.com/cartops/proctools/logger"
)

var rootCmd = &cobra.Command{
	Use:   "proctool",
	Short: "proctool - GIS processing pipeline runner",
	Long: `proctool - Run-tracked GIS processing pipelines.

proctool executes registered pipeline members, records their run history in
the run-results database, and reports batch outcomes by email.

Available commands:
  run    - Execute registered pipeline members in order
  db     - Manage the run-results database
  notify - Send a batch's last-run notification email

Examples:
  proctool run Roads_Update Parcels_Update   # Run two members in order
  proctool db migrate                        # Apply pending schema migrations
  proctool db stats                          # Show run-results statistics
  proctool notify Nightly                    # Email the Nightly batch summary`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.NotifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
