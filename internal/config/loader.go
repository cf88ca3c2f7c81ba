package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is the config file picked up from the working directory
// when no --config flag is given.
const DefaultConfigFile = "minebench.yaml"

// EnvSupports is the environment variable that overrides the configured
// support thresholds. Values may be separated by whitespace or commas,
// e.g. "5 10 25" or "2.5,10".
const EnvSupports = "MINEBENCH_SUPPORTS"

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadDefault loads DefaultConfigFile from the working directory when it
// exists and falls back to built-in defaults when it does not. Explicitly
// named files go through Load, where a missing file is an error.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			if err := applyEnvSupports(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Load(DefaultConfigFile)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Perform environment variable substitution
	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	// The support-sweep environment variable beats the file but not CLI flags.
	if err := applyEnvSupports(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseSupports parses a whitespace- or comma-separated list of support
// percentages.
func ParseSupports(s string) ([]float64, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) == 0 {
		return nil, fmt.Errorf("no support values given")
	}

	supports := make([]float64, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid support value %q: %w", field, err)
		}
		supports = append(supports, value)
	}
	return supports, nil
}

// applyEnvSupports replaces the configured supports when EnvSupports is set.
func applyEnvSupports(cfg *Config) error {
	raw, exists := os.LookupEnv(EnvSupports)
	if !exists {
		return nil
	}

	supports, err := ParseSupports(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvSupports, err)
	}
	cfg.Sweep.Supports = supports
	return nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	for i := range cfg.Sweep.Algorithms {
		cfg.Sweep.Algorithms[i].Path = expandEnvVar(cfg.Sweep.Algorithms[i].Path)
	}

	cfg.Output.Dir = expandEnvVar(cfg.Output.Dir)
	cfg.History.Path = expandEnvVar(cfg.History.Path)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetAlgorithm retrieves a configured algorithm by name.
func (c *Config) GetAlgorithm(name string) (*AlgorithmConfig, error) {
	for i := range c.Sweep.Algorithms {
		if c.Sweep.Algorithms[i].Name == name {
			return &c.Sweep.Algorithms[i], nil
		}
	}
	return nil, fmt.Errorf("algorithm %q not found in configuration", name)
}

// AlgorithmNames returns the configured algorithm names in declared order.
func (c *Config) AlgorithmNames() []string {
	names := make([]string, 0, len(c.Sweep.Algorithms))
	for _, algo := range c.Sweep.Algorithms {
		names = append(names, algo.Name)
	}
	return names
}

// SetAlgorithm appends an algorithm, or updates its path when the name is
// already present. CLI --algo flags use it to override config file entries.
func (c *Config) SetAlgorithm(name, path string) {
	for i := range c.Sweep.Algorithms {
		if c.Sweep.Algorithms[i].Name == name {
			c.Sweep.Algorithms[i].Path = path
			return
		}
	}
	c.Sweep.Algorithms = append(c.Sweep.Algorithms, AlgorithmConfig{Name: name, Path: path})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(supports []float64, outputDir string, timeoutSeconds float64, historyPath, logLevel, logFormat string) {
	if len(supports) > 0 {
		c.Sweep.Supports = supports
	}
	if outputDir != "" {
		c.Output.Dir = outputDir
	}
	if timeoutSeconds > 0 {
		c.Execution.TimeoutSeconds = timeoutSeconds
	}
	if historyPath != "" {
		c.History.Path = historyPath
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
}
