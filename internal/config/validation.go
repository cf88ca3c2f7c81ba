package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// algorithmNamePattern restricts names to characters that stay safe inside
// artifact file names like <name>-s<support>.out.
var algorithmNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateSweep()...)
	errors = append(errors, c.validateExecution()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateSweep() ValidationErrors {
	var errors ValidationErrors

	if len(c.Sweep.Supports) == 0 {
		errors = append(errors, ValidationError{
			Field:   "sweep.supports",
			Message: "at least one support threshold is required",
		})
	}

	seen := make(map[float64]bool)
	for i, s := range c.Sweep.Supports {
		field := fmt.Sprintf("sweep.supports[%d]", i)
		if s <= 0 || s > 100 {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("support %v must be greater than 0 and at most 100", s),
			})
		}
		if seen[s] {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("support %v is listed more than once", s),
			})
		}
		seen[s] = true
	}

	if len(c.Sweep.Algorithms) == 0 {
		errors = append(errors, ValidationError{
			Field:   "sweep.algorithms",
			Message: "at least one algorithm must be defined",
		})
	}

	names := make(map[string]bool)
	for i, algo := range c.Sweep.Algorithms {
		prefix := fmt.Sprintf("sweep.algorithms[%d]", i)

		if algo.Name == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".name",
				Message: "name is required",
			})
		} else {
			if !algorithmNamePattern.MatchString(algo.Name) {
				errors = append(errors, ValidationError{
					Field:   prefix + ".name",
					Message: "name may only contain letters, digits, '.', '_' and '-'",
				})
			}
			if names[algo.Name] {
				errors = append(errors, ValidationError{
					Field:   prefix + ".name",
					Message: fmt.Sprintf("algorithm %q is defined more than once", algo.Name),
				})
			}
			names[algo.Name] = true
		}

		if algo.Path == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Message: "path is required",
			})
		}
	}

	return errors
}

func (c *Config) validateExecution() ValidationErrors {
	var errors ValidationErrors

	if c.Execution.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "execution.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	if c.Output.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Message: "dir is required",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
