package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dbsmedya/minebench/internal/config"
	"github.com/dbsmedya/minebench/internal/results"
	"github.com/dbsmedya/minebench/internal/sweep"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var (
	planDataset  string
	planAlgos    []string
	planSupports string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the sweep execution plan",
	Long: `Plan resolves the effective configuration and displays the run grid
without executing anything.

The plan shows:
  - Sweep overview (dataset, algorithms, thresholds)
  - Run order with per-run artifact names
  - Configured executables
  - Effective configuration after file, environment and flag overrides

Example:
  minebench plan --config minebench.yaml --dataset data/market.dat`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planDataset, "dataset", "",
		"Dataset file the sweep would run against")
	planCmd.Flags().StringArrayVar(&planAlgos, "algo", nil,
		"Mining executable as name=path (repeatable, adds to configured algorithms)")
	planCmd.Flags().StringVar(&planSupports, "supports", "",
		"Support thresholds in percent, comma- or whitespace-separated")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	for _, spec := range planAlgos {
		name, path, err := splitAlgoSpec(spec)
		if err != nil {
			return err
		}
		cfg.SetAlgorithm(name, path)
	}

	var supports []float64
	if planSupports != "" {
		supports, err = config.ParseSupports(planSupports)
		if err != nil {
			return fmt.Errorf("invalid --supports value: %w", err)
		}
	}
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(supports, "", 0, "", overrides.LogLevel, overrides.LogFormat)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Thresholds run ascending within each algorithm; algorithms keep
	// declared order. Mirrors the runner's plan exactly.
	sorted := make([]float64, len(cfg.Sweep.Supports))
	copy(sorted, cfg.Sweep.Supports)
	sort.Float64s(sorted)

	printHeader("Sweep Plan")

	fmt.Fprintln(outputWriter)
	printSection("Sweep Overview")
	datasetLabel := planDataset
	if datasetLabel == "" {
		datasetLabel = "(not set)"
	}
	fmt.Fprintf(outputWriter, "  Dataset:    %s\n", datasetLabel)
	fmt.Fprintf(outputWriter, "  Algorithms: %d\n", len(cfg.Sweep.Algorithms))
	fmt.Fprintf(outputWriter, "  Thresholds: %s\n", supportList(sorted))
	fmt.Fprintf(outputWriter, "  Total Runs: %d\n", len(cfg.Sweep.Algorithms)*len(sorted))

	fmt.Fprintln(outputWriter)
	printSection("Run Order")
	num := 0
	for _, algo := range cfg.Sweep.Algorithms {
		for _, sup := range sorted {
			num++
			printRunItem(num, algo.Name, sup)
		}
	}

	fmt.Fprintln(outputWriter)
	printSection("Algorithms")
	printAlgorithmTable(cfg.Sweep.Algorithms)

	fmt.Fprintln(outputWriter)
	printSection("Configuration")
	fmt.Fprintf(outputWriter, "  Config File: %s\n", configFileLabel())
	fmt.Fprintf(outputWriter, "  Output Dir:  %s\n", cfg.Output.Dir)
	timeoutLabel := "none"
	if d := cfg.Execution.Timeout(); d > 0 {
		timeoutLabel = d.String()
	}
	fmt.Fprintf(outputWriter, "  Run Timeout: %s\n", timeoutLabel)
	historyLabel := cfg.History.Path
	if historyLabel == "" {
		historyLabel = "(disabled)"
	}
	fmt.Fprintf(outputWriter, "  History:     %s\n", historyLabel)
	fmt.Fprintf(outputWriter, "  Log Level:   %s\n", cfg.Logging.Level)

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}

// printRunItem prints one grid cell of the run order list.
func printRunItem(num int, algorithm string, support float64) {
	fmt.Fprintf(outputWriter, "  [%d] %s @ %s%% -> %s\n",
		num, algorithm, results.FormatSupport(support), sweep.OutputName(algorithm, support))
}

// printAlgorithmTable lists the executables with names padded to a common
// visual width so the paths line up.
func printAlgorithmTable(algos []config.AlgorithmConfig) {
	nameWidth := 0
	for _, algo := range algos {
		if w := runewidth.StringWidth(algo.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for _, algo := range algos {
		fmt.Fprintf(outputWriter, "  %s  %s\n", runewidth.FillRight(algo.Name, nameWidth), algo.Path)
	}
}

// supportList renders thresholds as "5%, 10%, 25%".
func supportList(supports []float64) string {
	parts := make([]string, len(supports))
	for i, s := range supports {
		parts[i] = results.FormatSupport(s) + "%"
	}
	return strings.Join(parts, ", ")
}
