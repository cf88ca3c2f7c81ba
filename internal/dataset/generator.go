// Package dataset generates synthetic transaction datasets with hard
// uniqueness and membership guarantees, writes them in the line-oriented
// miner input format, and verifies datasets on disk against those same
// guarantees.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/dbsmedya/minebench/internal/universe"
)

// ErrInsufficientUniverse is returned when the requested transaction count
// exceeds the number of distinct non-empty subsets the universe admits.
// The check runs before any sampling, so a failed generation never produces
// a partial dataset.
var ErrInsufficientUniverse = errors.New("universe too small for requested transaction count")

const (
	// zipfExponent skews item popularity: the i-th universe item is drawn
	// with weight 1/(i+1)^zipfExponent, so early items dominate the way
	// frequent items dominate real baskets.
	zipfExponent = 1.1

	// smallUniverseMax is the largest universe that uses a plain uniform
	// size distribution; the tiered distribution needs more headroom.
	smallUniverseMax = 5

	// minClusterableUniverse is the smallest universe that gets item
	// clusters; below it co-occurrence groups are meaningless.
	minClusterableUniverse = 4

	// collisionRunLimit is the number of consecutive duplicate draws after
	// which rejection sampling gives up and systematic enumeration takes
	// over. Long runs only happen when the subset space is nearly
	// exhausted.
	collisionRunLimit = 64

	// enumerableLimit is the largest universe whose subset bitmasks fit in
	// a uint64 walk. Above it enumeration is unreachable anyway: the
	// capacity is at least 2^62, so collision runs cannot build up.
	enumerableLimit = 62
)

// Transaction is a single basket: a non-empty set of universe items held in
// universe order.
type Transaction []string

// Line renders the transaction in its canonical single-line form, items
// separated by single spaces with no trailing delimiter. Two transactions
// are equal exactly when their Line forms are equal.
func (t Transaction) Line() string {
	return strings.Join(t, " ")
}

// Generator produces unique random transactions over a fixed universe.
// It is not safe for concurrent use; each goroutine needs its own Generator.
type Generator struct {
	uni        *universe.Universe
	rng        *rand.Rand
	seed       int64
	itemCum    []float64
	clusters   [][]int
	clusterCum []float64
}

// NewGenerator creates a generator over the given universe. A zero seed
// selects a wall-clock seed; any other value makes generation reproducible.
func NewGenerator(u *universe.Universe, seed int64) (*Generator, error) {
	if u == nil {
		return nil, fmt.Errorf("universe is nil")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	n := u.Size()

	itemWeights := make([]float64, n)
	for i := range itemWeights {
		itemWeights[i] = 1 / math.Pow(float64(i+1), zipfExponent)
	}

	clusters := buildClusters(rng, n)
	clusterWeights := make([]float64, len(clusters))
	for i := range clusterWeights {
		clusterWeights[i] = 1 / float64(i+1)
	}

	return &Generator{
		uni:        u,
		rng:        rng,
		seed:       seed,
		itemCum:    cumulative(itemWeights),
		clusters:   clusters,
		clusterCum: cumulative(clusterWeights),
	}, nil
}

// Seed returns the seed the generator actually runs with, which is the
// wall-clock value when the caller passed zero.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Generate produces exactly count distinct transactions, or fails without
// producing anything. Every transaction is a non-empty subset of the
// universe, no two transactions contain the same item set, and items within
// a transaction appear in universe order.
//
// Generation is rejection sampling over a clustered, popularity-weighted
// draw; when a run of consecutive collisions signals that the subset space
// is nearly full, the remainder is completed by walking subset bitmasks in
// a fixed order.
func (g *Generator) Generate(count int) ([]Transaction, error) {
	if count < 0 {
		return nil, fmt.Errorf("transaction count must be non-negative, got %d", count)
	}
	if count == 0 {
		return []Transaction{}, nil
	}

	capacity := g.uni.Capacity()
	if uint64(count) > capacity {
		return nil, fmt.Errorf("%w: %d items admit at most %d distinct non-empty transactions, %d requested",
			ErrInsufficientUniverse, g.uni.Size(), capacity, count)
	}

	out := make([]Transaction, 0, count)
	seen := make(map[string]struct{}, count)
	collisions := 0

	for len(out) < count {
		tx := g.transactionFromIndices(g.draw())
		key := tx.Line()

		if _, dup := seen[key]; dup {
			collisions++
			if collisions >= collisionRunLimit && g.uni.Size() <= enumerableLimit {
				return g.appendEnumerated(out, seen, count), nil
			}
			continue
		}

		collisions = 0
		seen[key] = struct{}{}
		out = append(out, tx)
	}

	return out, nil
}

// draw picks a target size and assembles a set of item indices for one
// candidate transaction: a seed group from one cluster, topped up with
// popularity-weighted items. Returned indices are sorted, which is universe
// order.
func (g *Generator) draw() []int {
	size := g.sizeFor()
	picked := make(map[int]struct{}, size)

	if len(g.clusters) > 0 {
		g.seedFromCluster(picked, size)
	}
	for len(picked) < size {
		picked[g.pickItem()] = struct{}{}
	}

	idx := make([]int, 0, len(picked))
	for i := range picked {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// sizeFor draws a target transaction size. Tiny universes use a uniform
// size over 1..n; larger ones follow a tiered distribution — 10% short
// baskets (2-5 items), 60% medium (6-12), 30% long (13-20) — clamped to the
// universe size. The distribution never degenerates to always-singleton or
// always-full-universe.
func (g *Generator) sizeFor() int {
	n := g.uni.Size()
	if n <= smallUniverseMax {
		return 1 + g.rng.Intn(n)
	}

	var lo, hi int
	switch r := g.rng.Float64(); {
	case r < 0.10:
		lo, hi = 2, 5
	case r < 0.70:
		lo, hi = 6, 12
	default:
		lo, hi = 13, 20
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo + g.rng.Intn(hi-lo+1)
}

// seedFromCluster copies a few members of one weighted-chosen cluster into
// picked: between 2 and half the target size, clamped to the cluster and to
// the target itself.
func (g *Generator) seedFromCluster(picked map[int]struct{}, size int) {
	c := g.clusters[g.pickCluster()]

	lo := 2
	if len(c) < lo {
		lo = len(c)
	}
	hi := size / 2
	if hi > len(c) {
		hi = len(c)
	}
	if hi < lo {
		hi = lo
	}

	k := lo + g.rng.Intn(hi-lo+1)
	if k > size {
		k = size
	}
	for _, pos := range g.rng.Perm(len(c))[:k] {
		picked[c[pos]] = struct{}{}
	}
}

// appendEnumerated completes the dataset by walking every subset bitmask in
// ascending order and keeping the ones not generated yet. Only called when
// the universe is small enough that the walk is bounded, and only after the
// capacity check guaranteed enough subsets remain.
func (g *Generator) appendEnumerated(out []Transaction, seen map[string]struct{}, count int) []Transaction {
	n := g.uni.Size()

	for mask := uint64(1); mask <= g.uni.Capacity() && len(out) < count; mask++ {
		idx := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if mask&(uint64(1)<<uint(i)) != 0 {
				idx = append(idx, i)
			}
		}

		tx := g.transactionFromIndices(idx)
		key := tx.Line()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}

	return out
}

// transactionFromIndices maps sorted universe indices to their items.
func (g *Generator) transactionFromIndices(idx []int) Transaction {
	tx := make(Transaction, len(idx))
	for i, j := range idx {
		tx[i] = g.uni.Item(j)
	}
	return tx
}

func (g *Generator) pickItem() int {
	return pickWeighted(g.rng, g.itemCum)
}

func (g *Generator) pickCluster() int {
	return pickWeighted(g.rng, g.clusterCum)
}

// pickWeighted draws an index with probability proportional to the weight
// gaps encoded in the cumulative sum.
func pickWeighted(rng *rand.Rand, cum []float64) int {
	r := rng.Float64() * cum[len(cum)-1]
	i := sort.SearchFloat64s(cum, r)
	if i >= len(cum) {
		i = len(cum) - 1
	}
	return i
}

// buildClusters samples k groups of items that the generator uses as
// co-occurrence seeds, so generated baskets share recurring combinations
// instead of being independent uniform picks. Clusters may overlap. Earlier
// clusters get higher selection weight.
func buildClusters(rng *rand.Rand, n int) [][]int {
	if n < minClusterableUniverse {
		return nil
	}

	k := n / 5
	if k < 3 {
		k = 3
	}
	if k > 10 {
		k = 10
	}

	maxSize := 12
	if maxSize > n {
		maxSize = n
	}

	clusters := make([][]int, k)
	for i := range clusters {
		size := 3
		if maxSize > 3 {
			size = 3 + rng.Intn(maxSize-3+1)
		}
		members := rng.Perm(n)[:size]
		sort.Ints(members)
		clusters[i] = members
	}
	return clusters
}

// cumulative converts weights into a cumulative sum for weighted sampling.
func cumulative(weights []float64) []float64 {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	return cum
}
