package cmd

import (
	"fmt"

	"github.com/dbsmedya/minebench/internal/dataset"
	"github.com/dbsmedya/minebench/internal/universe"
	"github.com/spf13/cobra"
)

var (
	generateUniverse string
	generateCount    int
	generateOutput   string
	generateSeed     int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic transaction dataset",
	Long: `Generate produces a dataset of unique transactions over a fixed item
universe, one transaction per line with single-space separators.

Every transaction is a distinct non-empty subset of the universe, so the
requested count must not exceed 2^n - 1 for a universe of n items. The
capacity check runs before any sampling; an impossible request fails
without writing a file.

The universe is given as an inline comma- or whitespace-separated list,
a file path (one item per line), AUTO for 100 synthetic items, or
AUTO:<n> for n synthetic items.

Example:
  minebench generate -u items.txt -n 10000 -o data/market.dat --seed 42
  minebench generate -u AUTO:50 -n 500 -o small.dat`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateUniverse, "universe", "u", "",
		"Item universe: inline list, file path, AUTO or AUTO:<n> (required)")
	generateCmd.MarkFlagRequired("universe")

	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0,
		"Number of unique transactions to generate (required)")
	generateCmd.MarkFlagRequired("count")

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "",
		"Output dataset file (required)")
	generateCmd.MarkFlagRequired("output")

	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0,
		"Random seed for reproducible datasets (0 picks a wall-clock seed)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	u, err := universe.Parse(generateUniverse)
	if err != nil {
		return fmt.Errorf("failed to resolve universe: %w", err)
	}

	gen, err := dataset.NewGenerator(u, generateSeed)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	txs, err := gen.Generate(generateCount)
	if err != nil {
		return err
	}

	if err := dataset.WriteFile(generateOutput, txs); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	// Display results
	fmt.Printf("\n=== Dataset Generated ===\n")
	fmt.Printf("Universe: %d items\n", u.Size())
	fmt.Printf("Transactions: %d (all unique)\n", len(txs))
	fmt.Printf("Seed: %d\n", gen.Seed())
	fmt.Printf("Output: %s\n", generateOutput)

	return nil
}
