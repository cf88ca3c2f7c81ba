package sweep

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingDataset is returned when the dataset path does not point at a
// readable regular file.
var ErrMissingDataset = errors.New("dataset file is missing")

// ErrMissingExecutable is returned when a configured miner binary does not
// exist or is not executable.
var ErrMissingExecutable = errors.New("mining executable is missing or not executable")

// CheckDataset verifies the dataset exists and is a regular file.
func CheckDataset(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDataset, path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrMissingDataset, path)
	}
	return nil
}

// CheckExecutable verifies a miner binary exists and carries an execute bit.
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingExecutable, path)
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrMissingExecutable, path)
	}
	return nil
}

// Preflight checks every input before anything runs: the sweep either
// starts with the dataset and all executables in place, or does not start
// at all.
func Preflight(dataset string, algorithms []Algorithm) error {
	if err := CheckDataset(dataset); err != nil {
		return err
	}
	for _, algo := range algorithms {
		if err := CheckExecutable(algo.Path); err != nil {
			return fmt.Errorf("algorithm %s: %w", algo.Name, err)
		}
	}
	return nil
}
