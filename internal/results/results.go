// Package results holds the outcome records of a benchmark sweep and their
// CSV serialization.
package results

import (
	"fmt"
	"time"
)

// Status classifies the outcome of a single miner invocation.
type Status string

const (
	// StatusOK means the miner exited cleanly and produced a non-empty
	// output artifact.
	StatusOK Status = "ok"

	// StatusEmpty means the miner reported that nothing meets the support
	// threshold. A legitimate result, not a failure.
	StatusEmpty Status = "empty"

	// StatusFailed means the invocation failed: non-zero exit without a
	// recognized benign-empty message, a spawn error, or a timeout.
	StatusFailed Status = "failed"
)

// ParseStatus validates a textual status, as read back from CSV.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOK, StatusEmpty, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown run status %q", s)
	}
}

// RunRecord is the immutable outcome of one (algorithm, support threshold)
// invocation.
type RunRecord struct {
	Algorithm string        // algorithm name as configured
	Support   float64       // minimum support threshold in percent
	Status    Status        // ok, empty or failed
	Runtime   time.Duration // wall-clock runtime, monotonic measurement
	Output    string        // path of the output artifact
}

// Table is an append-only ordered collection of run records. Records keep
// the order they were appended in, which is sweep execution order.
type Table struct {
	records []RunRecord
}

// NewTable creates an empty results table.
func NewTable() *Table {
	return &Table{}
}

// Append adds a record to the end of the table.
func (t *Table) Append(r RunRecord) {
	t.records = append(t.records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns the records in append order. The slice is a copy, so the
// table stays append-only.
func (t *Table) Records() []RunRecord {
	out := make([]RunRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Algorithms returns the distinct algorithm names in first-appearance order.
func (t *Table) Algorithms() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.records {
		if !seen[r.Algorithm] {
			seen[r.Algorithm] = true
			out = append(out, r.Algorithm)
		}
	}
	return out
}

// CountByStatus tallies records per status for summary output.
func (t *Table) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range t.records {
		counts[r.Status]++
	}
	return counts
}

// TotalRuntime sums the runtimes of all records.
func (t *Table) TotalRuntime() time.Duration {
	var total time.Duration
	for _, r := range t.records {
		total += r.Runtime
	}
	return total
}
