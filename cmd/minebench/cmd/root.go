package cmd

import (
	"os"

	"github.com/dbsmedya/minebench/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "minebench",
	Short: "Frequent-pattern mining benchmark harness",
	Long: `A benchmark harness for frequent-pattern mining executables: it
generates synthetic transaction datasets, sweeps miners across support
thresholds, and collects per-run results into CSV tables and runtime
charts.

Features:
  - Reproducible datasets of unique transactions over a fixed universe
  - Support sweeps over any set of mining executables, fail-fast on errors
  - Benign-empty detection so "nothing frequent here" never fails a sweep
  - Graph dataset conversion for gSpan, Gaston and FSG
  - Sweep history in an embedded SQLite database`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag. Empty means: minebench.yaml from the working
	// directory when present, built-in defaults otherwise.
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (default minebench.yaml when present)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig loads the effective configuration: the explicit --config path
// when given, otherwise minebench.yaml from the working directory when it
// exists, otherwise built-in defaults. An explicitly given missing path is
// an error; a missing default file is not.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadDefault()
}

// configFileLabel names the config source for display.
func configFileLabel() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.DefaultConfigFile); err == nil {
		return config.DefaultConfigFile
	}
	return "(built-in defaults)"
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
}
