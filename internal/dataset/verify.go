package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbsmedya/minebench/internal/universe"
)

// maxLineSize bounds a single dataset line during verification. Generated
// lines are far smaller; the headroom is for hand-made datasets.
const maxLineSize = 1 << 20

// VerifyReport holds the findings of a dataset verification pass. Line
// numbers are 1-based.
type VerifyReport struct {
	Transactions int   // non-blank lines
	Distinct     int   // distinct canonical forms
	BlankLines   []int // blank or whitespace-only lines
	Duplicates   []int // lines whose item set already appeared
	RepeatedItem []int // lines repeating an item within themselves

	// ForeignItems maps items outside the universe to the lines using
	// them. Nil when no universe was supplied to the verification.
	ForeignItems map[string][]int
}

// Ok reports whether the dataset satisfies every invariant the generator
// guarantees: no blank lines, no duplicate transactions, no repeated items,
// and (when checked against a universe) no foreign items.
func (r *VerifyReport) Ok() bool {
	return len(r.BlankLines) == 0 &&
		len(r.Duplicates) == 0 &&
		len(r.RepeatedItem) == 0 &&
		len(r.ForeignItems) == 0
}

// Problems renders the violations as human-readable lines, one per finding
// category. Returns nil for a clean dataset.
func (r *VerifyReport) Problems() []string {
	var out []string
	if len(r.BlankLines) > 0 {
		out = append(out, fmt.Sprintf("%d blank line(s), first at line %d", len(r.BlankLines), r.BlankLines[0]))
	}
	if len(r.Duplicates) > 0 {
		out = append(out, fmt.Sprintf("%d duplicate transaction(s), first at line %d", len(r.Duplicates), r.Duplicates[0]))
	}
	if len(r.RepeatedItem) > 0 {
		out = append(out, fmt.Sprintf("%d transaction(s) with repeated items, first at line %d", len(r.RepeatedItem), r.RepeatedItem[0]))
	}
	for item, lines := range r.ForeignItems {
		out = append(out, fmt.Sprintf("item %q outside the universe, first at line %d", item, lines[0]))
	}
	return out
}

// VerifyFile re-checks a dataset on disk. Pass a nil universe to skip the
// membership check (for datasets whose universe is unknown).
func VerifyFile(path string, u *universe.Universe) (*VerifyReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	report, err := VerifyReader(f, u)
	if err != nil {
		return nil, fmt.Errorf("verifying dataset %s: %w", path, err)
	}
	return report, nil
}

// VerifyReader checks every line of a dataset stream against the dataset
// invariants.
func VerifyReader(r io.Reader, u *universe.Universe) (*VerifyReport, error) {
	report := &VerifyReport{}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		items := strings.Fields(line)
		if len(items) == 0 {
			report.BlankLines = append(report.BlankLines, lineNo)
			continue
		}
		report.Transactions++

		// An in-line repeat makes the canonical form shorter than the
		// line, so detect it before dedup.
		itemSet := make(map[string]struct{}, len(items))
		repeated := false
		for _, item := range items {
			if _, dup := itemSet[item]; dup {
				repeated = true
			}
			itemSet[item] = struct{}{}

			if u != nil && !u.Contains(item) {
				if report.ForeignItems == nil {
					report.ForeignItems = make(map[string][]int)
				}
				report.ForeignItems[item] = append(report.ForeignItems[item], lineNo)
			}
		}
		if repeated {
			report.RepeatedItem = append(report.RepeatedItem, lineNo)
		}

		key := strings.Join(items, " ")
		if _, dup := seen[key]; dup {
			report.Duplicates = append(report.Duplicates, lineNo)
			continue
		}
		seen[key] = struct{}{}
		report.Distinct++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return report, nil
}
