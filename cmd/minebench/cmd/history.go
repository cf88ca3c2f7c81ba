package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/minebench/internal/history"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

var (
	historyDB          string
	historyLimit       int
	historyPruneBefore time.Duration
	historyRuns        string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sweeps from the history database",
	Long: `History lists past sweeps recorded in the SQLite history database,
newest first.

With --runs, the stored results table of one sweep is printed as CSV
instead. With --prune-before, sweeps older than the given age are deleted
before listing.

Example:
  minebench history --db bench.db --limit 10
  minebench history --db bench.db --runs 0c94a3a1-8f2e-4d6b-9c41-2a7f30f8e5d2
  minebench history --db bench.db --prune-before 720h`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyDB, "db", "",
		"History database path (defaults to the configured history path)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20,
		"Maximum number of sweeps to list (0 lists all)")
	historyCmd.Flags().DurationVar(&historyPruneBefore, "prune-before", 0,
		"Delete sweeps older than this age before listing (e.g. 720h)")
	historyCmd.Flags().StringVar(&historyRuns, "runs", "",
		"Print the results table of the given sweep ID as CSV")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := historyDB
	if dbPath == "" {
		dbPath = cfg.History.Path
	}
	if dbPath == "" {
		return fmt.Errorf("no history database configured (set history.path or pass --db)")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if historyRuns != "" {
		table, err := store.Runs(ctx, historyRuns)
		if err != nil {
			return err
		}
		return table.WriteCSV(cmd.OutOrStdout())
	}

	if historyPruneBefore > 0 {
		pruned, err := store.PruneBefore(ctx, time.Now().Add(-historyPruneBefore))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		cmd.Printf("Pruned %d sweep(s) older than %s\n\n", pruned, historyPruneBefore)
	}

	sweeps, err := store.ListSweeps(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list sweeps: %w", err)
	}

	if len(sweeps) == 0 {
		cmd.Println("No sweeps recorded.")
		return nil
	}

	cmd.Println("Recorded sweeps (newest first):")
	cmd.Println()
	for i, s := range sweeps {
		cmd.Printf("%d. %s  %s\n", i+1, s.ID, sweepVerdict(s.Success))
		cmd.Printf("   Dataset: %s\n", s.Dataset)
		cmd.Printf("   Started: %s  Duration: %s  Runs: %d\n",
			s.StartedAt.Format(time.RFC3339),
			s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond),
			s.Runs)
		cmd.Println()
	}
	cmd.Printf("Total: %d sweep(s)\n", len(sweeps))

	return nil
}

// sweepVerdict renders the stored success flag as a colored verdict.
func sweepVerdict(success bool) string {
	if success {
		return color.FgGreen.Render("ok")
	}
	return color.FgRed.Render("failed")
}
