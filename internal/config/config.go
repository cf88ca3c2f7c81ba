// Package config provides configuration structures and loading for minebench.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Sweep     SweepConfig     `yaml:"sweep" mapstructure:"sweep"`
	Execution ExecutionConfig `yaml:"execution" mapstructure:"execution"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// SweepConfig describes which miners run and at which support thresholds.
type SweepConfig struct {
	Supports   []float64         `yaml:"supports" mapstructure:"supports"`
	Algorithms []AlgorithmConfig `yaml:"algorithms" mapstructure:"algorithms"`
}

// AlgorithmConfig names one miner executable.
type AlgorithmConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Path string `yaml:"path" mapstructure:"path"`
}

// ExecutionConfig represents per-run execution limits.
type ExecutionConfig struct {
	TimeoutSeconds float64 `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 disables the per-run timeout
}

// OutputConfig represents where sweep artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// HistoryConfig represents the optional sweep history database.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty disables history
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultSupports returns the documented default support sweep, in percent.
func DefaultSupports() []float64 {
	return []float64{5, 10, 25, 50, 95}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Sweep: SweepConfig{
			Supports: DefaultSupports(),
		},
		Execution: ExecutionConfig{
			TimeoutSeconds: 0,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Timeout returns the per-run timeout as a duration, or zero when disabled.
func (ec ExecutionConfig) Timeout() time.Duration {
	if ec.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(ec.TimeoutSeconds * float64(time.Second))
}
