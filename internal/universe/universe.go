// Package universe defines the item universe that transactions are drawn from.
// A universe is an ordered set of distinct item identifiers; the order is part
// of the contract because transactions are emitted with their items in
// universe order, which keeps generated datasets deterministic for a seed.
package universe

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// AutoPrefix is the universe specification that requests a synthetic universe
// instead of an explicit item list. "AUTO" synthesizes DefaultAutoSize items;
// "AUTO:<n>" synthesizes exactly n.
const AutoPrefix = "AUTO"

// DefaultAutoSize is the number of items synthesized for a bare "AUTO" spec.
const DefaultAutoSize = 100

// ErrEmptyUniverse is returned when a specification yields no items at all.
var ErrEmptyUniverse = errors.New("universe contains no items")

// Universe is an ordered collection of distinct item identifiers.
// The zero value is not usable; construct one with New, Parse or Synthesize.
type Universe struct {
	items []string
	index map[string]int
}

// New builds a universe from an explicit item list. Duplicates are dropped,
// keeping the first occurrence, so the resulting order reflects first
// appearance in the input. Blank identifiers are rejected.
func New(items []string) (*Universe, error) {
	u := &Universe{
		index: make(map[string]int, len(items)),
	}

	for _, item := range items {
		if item == "" {
			return nil, fmt.Errorf("universe items must be non-empty strings")
		}
		if _, seen := u.index[item]; seen {
			continue
		}
		u.index[item] = len(u.items)
		u.items = append(u.items, item)
	}

	if len(u.items) == 0 {
		return nil, ErrEmptyUniverse
	}

	return u, nil
}

// Synthesize builds a universe of n generated items named I1..In.
func Synthesize(n int) (*Universe, error) {
	if n < 1 {
		return nil, fmt.Errorf("synthetic universe size must be at least 1, got %d", n)
	}

	items := make([]string, n)
	for i := range items {
		items[i] = "I" + strconv.Itoa(i+1)
	}

	return New(items)
}

// Parse resolves a universe specification into a Universe. The spec is, in
// order of precedence:
//   - "AUTO" or "AUTO:<n>": a synthetic universe of items I1..In
//   - an existing file path: items read from the file
//   - anything else: an inline item list
//
// Inline and file contents are tokenized the same way: commas are treated as
// whitespace and items are split on any whitespace run.
func Parse(spec string) (*Universe, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptyUniverse
	}

	// Synthetic universe request
	if spec == AutoPrefix || strings.HasPrefix(spec, AutoPrefix+":") {
		return parseAuto(spec)
	}

	// File source wins over inline when the path exists
	if info, err := os.Stat(spec); err == nil && info.Mode().IsRegular() {
		data, err := os.ReadFile(spec)
		if err != nil {
			return nil, fmt.Errorf("reading universe file %s: %w", spec, err)
		}
		u, err := New(Tokenize(string(data)))
		if err != nil {
			return nil, fmt.Errorf("universe file %s: %w", spec, err)
		}
		return u, nil
	}

	return New(Tokenize(spec))
}

// parseAuto handles the AUTO and AUTO:<n> forms.
func parseAuto(spec string) (*Universe, error) {
	if spec == AutoPrefix {
		return Synthesize(DefaultAutoSize)
	}

	arg := strings.TrimPrefix(spec, AutoPrefix+":")
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid synthetic universe size %q: %w", arg, err)
	}

	return Synthesize(n)
}

// Tokenize splits raw universe text into item tokens. Commas count as
// separators so both "A,B,C" and "A B C" (and mixtures) parse the same way.
func Tokenize(raw string) []string {
	return strings.Fields(strings.ReplaceAll(raw, ",", " "))
}

// Size returns the number of distinct items.
func (u *Universe) Size() int {
	return len(u.items)
}

// Items returns the items in universe order. The slice is a copy; callers
// may modify it freely.
func (u *Universe) Items() []string {
	out := make([]string, len(u.items))
	copy(out, u.items)
	return out
}

// Item returns the item at position i in universe order.
func (u *Universe) Item(i int) string {
	return u.items[i]
}

// Contains reports whether the item belongs to the universe.
func (u *Universe) Contains(item string) bool {
	_, ok := u.index[item]
	return ok
}

// Index returns the position of item in universe order, and whether the
// item belongs to the universe at all.
func (u *Universe) Index(item string) (int, bool) {
	i, ok := u.index[item]
	return i, ok
}

// Capacity returns the number of distinct non-empty transactions the universe
// admits: 2^n - 1 for n items. For n >= 64 the true count overflows uint64,
// so the value saturates at math.MaxUint64; at that scale the capacity check
// can never fail for any representable request.
func (u *Universe) Capacity() uint64 {
	n := len(u.items)
	if n >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << uint(n)) - 1
}
