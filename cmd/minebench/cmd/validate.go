package cmd

import (
	"fmt"

	"github.com/dbsmedya/minebench/internal/dataset"
	"github.com/dbsmedya/minebench/internal/logger"
	"github.com/dbsmedya/minebench/internal/sweep"
	"github.com/spf13/cobra"
)

var validateDataset string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the effective configuration and verifies every
configured mining executable without running anything.

Checks performed:
  - Configuration values (thresholds, algorithm names, paths, timeout)
  - Mining executable presence and execute permission
  - Dataset presence, when --dataset is given
  - Dataset invariants: no blank lines, no duplicate transactions,
    no repeated items within a transaction

These are the same preflight checks a sweep runs before its first miner,
so a clean validate means the sweep will not abort on setup.

Example:
  minebench validate --config minebench.yaml --dataset data/market.dat`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateDataset, "dataset", "",
		"Dataset file to verify along with the configuration")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(nil, "", 0, "", overrides.LogLevel, overrides.LogFormat)

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Starting validation checks...")

	fmt.Printf("\n=== Configuration Validation ===\n")
	fmt.Printf("Config file: %s\n", configFileLabel())
	fmt.Printf("Algorithms: %d\n\n", len(cfg.Sweep.Algorithms))

	hasErrors := false

	// Configuration values
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Configuration invalid:\n%v\n\n", err)
		hasErrors = true
	} else {
		fmt.Printf("✅ Configuration valid\n\n")
	}

	// Executable preflight, one verdict per algorithm
	for _, algo := range cfg.Sweep.Algorithms {
		fmt.Printf("--- Algorithm: %s ---\n", algo.Name)
		if err := sweep.CheckExecutable(algo.Path); err != nil {
			fmt.Printf("❌ %v\n\n", err)
			hasErrors = true
			continue
		}
		fmt.Printf("✅ %s is executable\n\n", algo.Path)
	}

	// Dataset verification
	if validateDataset != "" {
		fmt.Printf("--- Dataset: %s ---\n", validateDataset)
		hasErrors = !validateDatasetFile(validateDataset) || hasErrors
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	fmt.Println("=== Validation Complete ===")
	fmt.Println("✅ All checks passed")
	return nil
}

// validateDatasetFile checks presence and the generator invariants of one
// dataset file, printing a verdict per finding. Returns true when clean.
func validateDatasetFile(path string) bool {
	if err := sweep.CheckDataset(path); err != nil {
		fmt.Printf("❌ %v\n\n", err)
		return false
	}

	report, err := dataset.VerifyFile(path, nil)
	if err != nil {
		fmt.Printf("❌ verification failed: %v\n\n", err)
		return false
	}

	if !report.Ok() {
		for _, problem := range report.Problems() {
			fmt.Printf("❌ %s\n", problem)
		}
		fmt.Println()
		return false
	}

	fmt.Printf("✅ %d transactions, all distinct\n\n", report.Transactions)
	return true
}
