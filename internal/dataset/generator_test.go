package dataset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dbsmedya/minebench/internal/universe"
)

func mustUniverse(t *testing.T, spec string) *universe.Universe {
	t.Helper()
	u, err := universe.Parse(spec)
	if err != nil {
		t.Fatalf("parsing universe %q: %v", spec, err)
	}
	return u
}

func TestNewGenerator_NilUniverse(t *testing.T) {
	if _, err := NewGenerator(nil, 1); err == nil {
		t.Error("Expected error for nil universe, got nil")
	}
}

func TestGenerate_CountAndUniqueness(t *testing.T) {
	g, err := NewGenerator(mustUniverse(t, "AUTO:40"), 7)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	txs, err := g.Generate(500)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(txs) != 500 {
		t.Fatalf("Expected 500 transactions, got %d", len(txs))
	}

	seen := make(map[string]struct{}, len(txs))
	for i, tx := range txs {
		if len(tx) == 0 {
			t.Fatalf("Transaction %d is empty", i)
		}
		key := tx.Line()
		if _, dup := seen[key]; dup {
			t.Fatalf("Transaction %d duplicates an earlier one: %q", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerate_ItemsInUniverseOrder(t *testing.T) {
	u := mustUniverse(t, "zebra apple mango kiwi plum fig date lime pear oat")
	g, err := NewGenerator(u, 3)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	txs, err := g.Generate(100)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for i, tx := range txs {
		prev := -1
		for _, item := range tx {
			pos, ok := u.Index(item)
			if !ok {
				t.Fatalf("Transaction %d contains foreign item %q", i, item)
			}
			if pos <= prev {
				t.Fatalf("Transaction %d not in universe order: %v", i, tx)
			}
			prev = pos
		}
	}
}

func TestGenerate_InsufficientUniverse(t *testing.T) {
	// Three items admit 7 distinct non-empty transactions: 8 must fail,
	// 5 must succeed.
	u := mustUniverse(t, "A B C")

	g, err := NewGenerator(u, 1)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	if _, err := g.Generate(8); !errors.Is(err, ErrInsufficientUniverse) {
		t.Errorf("Generate(8) over 3 items: expected ErrInsufficientUniverse, got %v", err)
	}

	txs, err := g.Generate(5)
	if err != nil {
		t.Fatalf("Generate(5) over 3 items returned error: %v", err)
	}
	if len(txs) != 5 {
		t.Errorf("Expected 5 transactions, got %d", len(txs))
	}
}

func TestGenerate_ExactCapacity(t *testing.T) {
	// Requesting every subset forces the enumeration fallback to finish
	// the tail that rejection sampling cannot reach quickly.
	u := mustUniverse(t, "A B C D")
	g, err := NewGenerator(u, 99)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	txs, err := g.Generate(15)
	if err != nil {
		t.Fatalf("Generate at exact capacity returned error: %v", err)
	}
	if len(txs) != 15 {
		t.Fatalf("Expected all 15 subsets, got %d", len(txs))
	}

	seen := make(map[string]struct{})
	for _, tx := range txs {
		seen[tx.Line()] = struct{}{}
	}
	if len(seen) != 15 {
		t.Errorf("Expected 15 distinct transactions, got %d", len(seen))
	}
}

func TestGenerate_ZeroCount(t *testing.T) {
	g, err := NewGenerator(mustUniverse(t, "A B C"), 1)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	txs, err := g.Generate(0)
	if err != nil {
		t.Errorf("Generate(0) returned error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("Expected empty dataset, got %d transactions", len(txs))
	}
}

func TestGenerate_NegativeCount(t *testing.T) {
	g, err := NewGenerator(mustUniverse(t, "A B C"), 1)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	if _, err := g.Generate(-1); err == nil {
		t.Error("Expected error for negative count, got nil")
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	u := mustUniverse(t, "AUTO:30")

	g1, err := NewGenerator(u, 42)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	g2, err := NewGenerator(u, 42)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	a, err := g1.Generate(50)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	b, err := g2.Generate(50)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("Same seed produced different datasets")
	}
}

func TestGenerate_SizesVary(t *testing.T) {
	g, err := NewGenerator(mustUniverse(t, "AUTO:50"), 11)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	txs, err := g.Generate(300)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	sizes := make(map[int]int)
	for _, tx := range txs {
		sizes[len(tx)]++
	}
	// The tiered size distribution must not collapse to a single size.
	if len(sizes) < 3 {
		t.Errorf("Expected varied transaction sizes, got only %d distinct sizes: %v", len(sizes), sizes)
	}
	for size := range sizes {
		if size < 1 || size > 50 {
			t.Errorf("Transaction size %d outside 1..50", size)
		}
	}
}

// TestProperty_GeneratedDatasetsHoldInvariants drives the generator across
// random universe sizes, counts and seeds and re-checks the three hard
// guarantees on every output: exact count, uniqueness, and universe
// membership in order.
func TestProperty_GeneratedDatasetsHoldInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every generated dataset is exact, unique and in-universe", prop.ForAll(
		func(size int, count int, seed int64) bool {
			u, err := universe.Synthesize(size)
			if err != nil {
				return false
			}
			if uint64(count) > u.Capacity() {
				count = int(u.Capacity())
			}

			g, err := NewGenerator(u, seed)
			if err != nil {
				return false
			}
			txs, err := g.Generate(count)
			if err != nil {
				return false
			}
			if len(txs) != count {
				return false
			}

			seen := make(map[string]struct{}, len(txs))
			for _, tx := range txs {
				if len(tx) == 0 {
					return false
				}
				prev := -1
				for _, item := range tx {
					pos, ok := u.Index(item)
					if !ok || pos <= prev {
						return false
					}
					prev = pos
				}
				key := tx.Line()
				if _, dup := seen[key]; dup {
					return false
				}
				seen[key] = struct{}{}
			}
			return true
		},
		gen.IntRange(1, 24),
		gen.IntRange(0, 200),
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}
