package circuit

import (
	"fmt"
	"sort"
	"sync"

	"github.com/consensys/gnark/debug"

	"github.com/merdan-9/halo2-examples/plonk"
)

// CopyPair is one recorded equality between two cells.
type CopyPair struct {
	A, B plonk.Cell
}

// copyTracker maintains a union-find over all cells touched by copy
// constraints. Recording is append-only and thread-safe, so two regions may
// record copies concurrently.
type copyTracker struct {
	cs *plonk.ConstraintSystem

	mu     sync.Mutex
	parent map[plonk.Cell]plonk.Cell
	rank   map[plonk.Cell]int
	pairs  []CopyPair
}

func newCopyTracker(cs *plonk.ConstraintSystem) *copyTracker {
	return &copyTracker{
		cs:     cs,
		parent: make(map[plonk.Cell]plonk.Cell),
		rank:   make(map[plonk.Cell]int),
	}
}

// record unions the classes of a and b. Both columns must have equality
// enabled.
func (t *copyTracker) record(a, b plonk.Cell) error {
	for _, c := range [2]plonk.Cell{a, b} {
		if !t.cs.EqualityEnabled(c.Column) {
			return fmt.Errorf("%w: copy %v <-> %v: equality not enabled on %v",
				plonk.ErrConfiguration, a, b, c.Column)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pairs = append(t.pairs, CopyPair{A: a, B: b})
	ra, rb := t.find(a), t.find(b)
	if ra == rb {
		return nil
	}
	if t.rank[ra] < t.rank[rb] {
		ra, rb = rb, ra
	}
	t.parent[rb] = ra
	if t.rank[ra] == t.rank[rb] {
		t.rank[ra]++
	}
	return nil
}

// find returns the class root, halving paths on the way. Caller holds mu.
func (t *copyTracker) find(c plonk.Cell) plonk.Cell {
	if _, ok := t.parent[c]; !ok {
		t.parent[c] = c
		return c
	}
	for t.parent[c] != c {
		t.parent[c] = t.parent[t.parent[c]]
		c = t.parent[c]
	}
	return c
}

// classes returns every equivalence class with at least two members. Class
// members are sorted and the classes ordered by their first member, so the
// checker's report is deterministic.
func (t *copyTracker) classes() [][]plonk.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()
	if debug.Debug {
		for _, p := range t.pairs {
			if t.find(p.A) != t.find(p.B) {
				panic(fmt.Sprintf("unexpected: recorded pair %v <-> %v split across classes", p.A, p.B))
			}
		}
	}
	cells := make([]plonk.Cell, 0, len(t.parent))
	for c := range t.parent {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	groups := make(map[plonk.Cell][]plonk.Cell)
	for _, c := range cells {
		r := t.find(c)
		groups[r] = append(groups[r], c)
	}
	res := make([][]plonk.Cell, 0, len(groups))
	for _, g := range groups {
		if len(g) > 1 {
			res = append(res, g)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0].Less(res[j][0]) })
	return res
}

// copyPairs returns the recorded pairs in recording order.
func (t *copyTracker) copyPairs() []CopyPair {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CopyPair, len(t.pairs))
	copy(out, t.pairs)
	return out
}
