package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dbsmedya/minebench/internal/chart"
	"github.com/dbsmedya/minebench/internal/config"
	"github.com/dbsmedya/minebench/internal/history"
	"github.com/dbsmedya/minebench/internal/lock"
	"github.com/dbsmedya/minebench/internal/logger"
	"github.com/dbsmedya/minebench/internal/results"
	"github.com/dbsmedya/minebench/internal/sweep"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

var (
	sweepDataset   string
	sweepOutputDir string
	sweepAlgos     []string
	sweepSupports  string
	sweepTimeout   time.Duration
	sweepHistoryDB string
	sweepForce     bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every configured miner across the support sweep",
	Long: `Sweep benchmarks the configured mining executables against one dataset
across a series of support thresholds.

Each miner runs once per threshold as <path> -s<support> <dataset> <output>,
thresholds ascending per miner, miners in configured order. Every run is
classified as ok, empty or failed; the first hard failure aborts the sweep.
Artifacts land in the output directory:

  <algorithm>-s<support>.out   miner output
  <algorithm>-s<support>.log   combined stdout+stderr
  results.csv                  the sweep results table
  plot.txt                     runtime-vs-support chart (successful sweeps)

Example:
  minebench sweep --dataset data/market.dat --output-dir out \
    --algo apriori=/usr/local/bin/apriori --supports "5 10 25"`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDataset, "dataset", "",
		"Dataset file fed to every miner (required)")
	sweepCmd.MarkFlagRequired("dataset")

	sweepCmd.Flags().StringVar(&sweepOutputDir, "output-dir", "",
		"Directory for per-run artifacts and results.csv")
	sweepCmd.Flags().StringArrayVar(&sweepAlgos, "algo", nil,
		"Mining executable as name=path (repeatable, adds to configured algorithms)")
	sweepCmd.Flags().StringVar(&sweepSupports, "supports", "",
		"Support thresholds in percent, comma- or whitespace-separated")
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 0,
		"Per-run timeout (0 disables)")
	sweepCmd.Flags().StringVar(&sweepHistoryDB, "history", "",
		"SQLite database recording sweep outcomes")

	sweepCmd.Flags().BoolVar(&sweepForce, "force", false,
		"Run even if the output directory is locked by another sweep (use with caution)")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	if err := applySweepFlags(cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infow("Starting benchmark sweep",
		"dataset", sweepDataset,
		"algorithms", len(cfg.Sweep.Algorithms),
		"supports", len(cfg.Sweep.Supports),
	)

	// Acquire the output directory lock to prevent concurrent sweeps
	if !sweepForce {
		sweepLock := lock.NewSweepLock(cfg.Output.Dir)
		if err := sweepLock.AcquireOrFail(); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return fmt.Errorf("output directory '%s' is in use by another sweep (use --force to override): %w",
					cfg.Output.Dir, err)
			}
			return fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		defer sweepLock.Release()
		log.Infow("Acquired sweep lock", "path", sweepLock.Path())
	} else {
		log.Warnw("Skipping sweep lock acquisition (--force flag used)", "dir", cfg.Output.Dir)
	}

	// Create runner
	runner, err := sweep.NewRunner(sweep.Options{
		Algorithms: sweepAlgorithms(cfg),
		Supports:   cfg.Sweep.Supports,
		Dataset:    sweepDataset,
		OutputDir:  cfg.Output.Dir,
		Timeout:    cfg.Execution.Timeout(),
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create sweep runner: %w", err)
	}

	// Initialize (preflight, output directory, run plan). Preflight
	// failures abort here, before any miner runs.
	if err := runner.Initialize(); err != nil {
		return fmt.Errorf("sweep initialization failed: %w", err)
	}

	// Handle graceful shutdown: the running miner is killed and the sweep
	// stops before the next run.
	ctx := sweep.SetupSignalHandlerWithCallback(func(sig os.Signal) {
		log.Warnw("Received shutdown signal - stopping sweep", "signal", sig.String())
	})

	// Execute the sweep
	result, execErr := runner.Execute(ctx)
	if result == nil {
		return execErr
	}

	// An aborted sweep still reports the runs that finished.
	csvPath := filepath.Join(cfg.Output.Dir, "results.csv")
	if result.Table.Len() > 0 {
		if err := result.Table.WriteFile(csvPath); err != nil {
			return fmt.Errorf("failed to write results table: %w", err)
		}
	}

	if result.Success {
		if err := renderCharts(cfg.Output.Dir, result.Table); err != nil {
			log.Warnw("Skipping runtime chart", "reason", err.Error())
		}
	}

	recordHistory(cfg, log, result)

	printSweepSummary(result, csvPath)

	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			return fmt.Errorf("sweep cancelled before completion")
		}
		return fmt.Errorf("sweep failed: %w", execErr)
	}

	return nil
}

// applySweepFlags folds the sweep command's flags into the effective
// config: --algo entries first, then the scalar overrides.
func applySweepFlags(cfg *config.Config) error {
	for _, spec := range sweepAlgos {
		name, path, err := splitAlgoSpec(spec)
		if err != nil {
			return err
		}
		cfg.SetAlgorithm(name, path)
	}

	var supports []float64
	if sweepSupports != "" {
		var err error
		supports, err = config.ParseSupports(sweepSupports)
		if err != nil {
			return fmt.Errorf("invalid --supports value: %w", err)
		}
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(supports, sweepOutputDir, sweepTimeout.Seconds(),
		sweepHistoryDB, overrides.LogLevel, overrides.LogFormat)

	return nil
}

// splitAlgoSpec parses one --algo flag value of the form name=path.
func splitAlgoSpec(spec string) (string, string, error) {
	name, path, found := strings.Cut(spec, "=")
	if !found || name == "" || path == "" {
		return "", "", fmt.Errorf("invalid --algo value %q: expected name=path", spec)
	}
	return name, path, nil
}

// sweepAlgorithms converts the configured algorithm list into runner form.
func sweepAlgorithms(cfg *config.Config) []sweep.Algorithm {
	algos := make([]sweep.Algorithm, 0, len(cfg.Sweep.Algorithms))
	for _, a := range cfg.Sweep.Algorithms {
		algos = append(algos, sweep.Algorithm{Name: a.Name, Path: a.Path})
	}
	return algos
}

// renderCharts writes the plain runtime chart to plot.txt and echoes a
// colored copy to the terminal.
func renderCharts(outputDir string, table *results.Table) error {
	plot, err := chart.Render(table, nil)
	if err != nil {
		return err
	}

	plotPath := filepath.Join(outputDir, "plot.txt")
	if err := os.WriteFile(plotPath, []byte(plot), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", plotPath, err)
	}

	colorCfg := chart.DefaultConfig()
	colorCfg.Color = true
	if colored, err := chart.Render(table, colorCfg); err == nil {
		fmt.Println()
		fmt.Print(colored)
	}

	return nil
}

// recordHistory stores the sweep outcome when a history database is
// configured. History failures are logged, never fatal: the results are
// already on disk.
func recordHistory(cfg *config.Config, log *logger.Logger, result *sweep.SweepResult) {
	if cfg.History.Path == "" {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warnw("Failed to open history database", "path", cfg.History.Path, "error", err.Error())
		return
	}
	defer store.Close()

	id, err := store.RecordSweep(context.Background(), result)
	if err != nil {
		log.Warnw("Failed to record sweep history", "error", err.Error())
		return
	}
	log.Infow("Sweep recorded in history", "sweep", id, "path", cfg.History.Path)
}

// printSweepSummary prints the post-sweep report with colored status
// counts. It runs for aborted sweeps too, over the partial table.
func printSweepSummary(result *sweep.SweepResult, csvPath string) {
	counts := result.Table.CountByStatus()

	fmt.Printf("\n=== Sweep Summary ===\n")
	fmt.Printf("Dataset: %s\n", result.Dataset)
	fmt.Printf("Duration: %s\n", result.Duration)
	fmt.Printf("Runs: %d\n", result.Table.Len())
	fmt.Printf("OK: %s\n", color.FgGreen.Render(strconv.Itoa(counts[results.StatusOK])))
	fmt.Printf("Empty: %s\n", color.FgYellow.Render(strconv.Itoa(counts[results.StatusEmpty])))
	fmt.Printf("Failed: %s\n", color.FgRed.Render(strconv.Itoa(counts[results.StatusFailed])))
	if result.Table.Len() > 0 {
		fmt.Printf("Results: %s\n", csvPath)
	}
	fmt.Printf("Success: %v\n", result.Success)
}
