package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartops/proctools/config"
)

// DbCmd represents the db (run-results database) command.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the run-results database",
	Long: `Manage the run-results database.

Examples:
  proctool db migrate   # Apply pending schema migrations
  proctool db stats     # Show batch/job/run statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run-results statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	database, err := openRunResults(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("Run-results database migrated: %s\n", cfg.RunResultsDBPath())
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	database, err := openRunResults(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var batches, jobs, runs, incomplete, failed int
	row := database.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM Batch),
			(SELECT COUNT(*) FROM Job),
			(SELECT COUNT(*) FROM Job_Run),
			(SELECT COUNT(*) FROM Job_Run WHERE status = -1),
			(SELECT COUNT(*) FROM Job_Run WHERE status = 0)`)
	if err := row.Scan(&batches, &jobs, &runs, &incomplete, &failed); err != nil {
		return err
	}

	fmt.Println("Run-Results Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Printf("Database Path:   %s\n", cfg.RunResultsDBPath())
	fmt.Printf("Batches:         %d\n", batches)
	fmt.Printf("Jobs:            %d\n", jobs)
	fmt.Printf("Job Runs:        %d\n", runs)
	fmt.Printf("  incomplete:    %d\n", incomplete)
	fmt.Printf("  failed:        %d\n", failed)
	fmt.Printf("  complete:      %d\n", runs-incomplete-failed)

	var lastStart string
	err = database.QueryRow(
		"SELECT start_time FROM Job_Run ORDER BY start_time DESC LIMIT 1").Scan(&lastStart)
	if err == nil {
		fmt.Printf("Last Run Start:  %s\n", lastStart)
	}
	return nil
}
