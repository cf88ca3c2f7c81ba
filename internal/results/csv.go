package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// csvHeader is the fixed column order of a serialized results table.
var csvHeader = []string{"algorithm", "support_pct", "status", "runtime_seconds", "output"}

// FormatSupport renders a support percentage in its shortest exact decimal
// form: 25 stays "25", 2.5 stays "2.5". The same form is used in CSV cells,
// in miner -s arguments, and in artifact file names, so they always agree.
func FormatSupport(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// formatSeconds renders a runtime as decimal seconds, shortest exact form.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// parseSeconds reads decimal seconds back into a duration, rounding to the
// nanosecond. Together with formatSeconds this makes the CSV round-trip
// exact for any benchmark-scale runtime.
func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("runtime must be non-negative, got %s", s)
	}
	return time.Duration(math.Round(f * float64(time.Second))), nil
}

// WriteCSV serializes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing results header: %w", err)
	}
	for _, r := range t.records {
		row := []string{
			r.Algorithm,
			FormatSupport(r.Support),
			string(r.Status),
			formatSeconds(r.Runtime),
			r.Output,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing results row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path as CSV, truncating any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file %s: %w", path, err)
	}

	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing results file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing results file %s: %w", path, err)
	}
	return nil
}

// ReadCSV deserializes a results table, validating the header, the column
// count of every row, and every field. Row numbers in errors are 1-based
// and include the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("results CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading results header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected results header: column %d is %q, want %q", i+1, header[i], col)
		}
	}

	table := NewTable()
	row := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("reading results row %d: %w", row, err)
		}

		support, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("results row %d: invalid support %q: %w", row, fields[1], err)
		}
		status, err := ParseStatus(fields[2])
		if err != nil {
			return nil, fmt.Errorf("results row %d: %w", row, err)
		}
		runtime, err := parseSeconds(fields[3])
		if err != nil {
			return nil, fmt.Errorf("results row %d: invalid runtime %q: %w", row, fields[3], err)
		}

		table.Append(RunRecord{
			Algorithm: fields[0],
			Support:   support,
			Status:    status,
			Runtime:   runtime,
			Output:    fields[4],
		})
	}

	return table, nil
}

// ReadFile reads a results table from a CSV file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("results file %s: %w", path, err)
	}
	return table, nil
}
