package circuit

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Assembly is the populated grid for one instance: advice and fixed values
// with per-cell assigned flags, the provided public-input vectors, selector
// rows and the recorded copy constraints.
//
// An assembly is written exclusively through the layouter, which serializes
// all mutation; once synthesis finishes it is read-only and safe for
// concurrent readers.
type Assembly struct {
	cs   *plonk.ConstraintSystem
	fd   field.Field
	rows int

	advice    [][]constraint.Element
	adviceSet []*bitset.BitSet
	fixed     [][]constraint.Element
	fixedSet  []*bitset.BitSet
	instances [][]constraint.Element
	selectors []*bitset.BitSet

	copies *copyTracker
}

// NewAssembly allocates an empty 2^k grid for the finalized system. The
// instances slice provides one public-input vector per instance column;
// vectors shorter than the grid leave the remaining instance rows
// unassigned.
func NewAssembly(cs *plonk.ConstraintSystem, k int, instances [][]constraint.Element) (*Assembly, error) {
	if !cs.Finalized() {
		return nil, fmt.Errorf("%w: constraint system is not finalized", plonk.ErrConfiguration)
	}
	if k <= 0 || k > 30 {
		return nil, fmt.Errorf("%w: log2 row count k=%d out of range", plonk.ErrConfiguration, k)
	}
	if len(instances) != cs.NbInstance() {
		return nil, fmt.Errorf("%w: got %d instance vectors for %d instance columns",
			plonk.ErrConfiguration, len(instances), cs.NbInstance())
	}
	rows := 1 << k
	for i, vec := range instances {
		if len(vec) > rows {
			return nil, fmt.Errorf("%w: instance vector %d has %d values for %d rows",
				plonk.ErrConfiguration, i, len(vec), rows)
		}
	}

	a := &Assembly{
		cs:        cs,
		fd:        cs.Field(),
		rows:      rows,
		advice:    make([][]constraint.Element, cs.NbAdvice()),
		adviceSet: make([]*bitset.BitSet, cs.NbAdvice()),
		fixed:     make([][]constraint.Element, cs.NbFixed()),
		fixedSet:  make([]*bitset.BitSet, cs.NbFixed()),
		instances: make([][]constraint.Element, len(instances)),
		selectors: make([]*bitset.BitSet, cs.NbSelectors()),
		copies:    newCopyTracker(cs),
	}
	for i := range a.advice {
		a.advice[i] = make([]constraint.Element, rows)
		a.adviceSet[i] = bitset.New(uint(rows))
	}
	for i := range a.fixed {
		a.fixed[i] = make([]constraint.Element, rows)
		a.fixedSet[i] = bitset.New(uint(rows))
	}
	for i, vec := range instances {
		a.instances[i] = make([]constraint.Element, len(vec))
		copy(a.instances[i], vec)
	}
	for i := range a.selectors {
		a.selectors[i] = bitset.New(uint(rows))
	}
	return a, nil
}

// Rows returns the grid height 2^k.
func (a *Assembly) Rows() int { return a.rows }

// Field returns the field the grid's values live in.
func (a *Assembly) Field() field.Field { return a.fd }

// System returns the constraint system the grid was laid out for.
func (a *Assembly) System() *plonk.ConstraintSystem { return a.cs }

// assign writes a value, rejecting conflicting double assignments.
// Re-assigning the identical value is a no-op. Caller holds the layout lock.
func (a *Assembly) assign(col plonk.Column, row int, v constraint.Element) error {
	if row < 0 || row >= a.rows {
		return assignErrorf("cell %v out of the %d-row grid", plonk.Cell{Column: col, Row: row}, a.rows)
	}
	var vals []constraint.Element
	var set *bitset.BitSet
	switch col.Kind {
	case plonk.Advice:
		vals, set = a.advice[col.Index], a.adviceSet[col.Index]
	case plonk.Fixed:
		vals, set = a.fixed[col.Index], a.fixedSet[col.Index]
	default:
		return assignErrorf("cannot assign into %v", col)
	}
	if set.Test(uint(row)) {
		if vals[row] != v {
			return assignErrorf("cell %v already holds %s, refusing to overwrite with %s",
				plonk.Cell{Column: col, Row: row}, a.fd.String(vals[row]), a.fd.String(v))
		}
		return nil
	}
	vals[row] = v
	set.Set(uint(row))
	return nil
}

// enableSelector turns the selector on at a row. Caller holds the layout
// lock.
func (a *Assembly) enableSelector(sel plonk.Selector, row int) error {
	if row < 0 || row >= a.rows {
		return assignErrorf("%v row %d out of the %d-row grid", sel, row, a.rows)
	}
	a.selectors[sel.Index].Set(uint(row))
	return nil
}

// instanceValue reads a public input. Rows beyond the provided vector are
// unassigned and may not be read during synthesis.
func (a *Assembly) instanceValue(col plonk.Column, row int) (constraint.Element, error) {
	vec := a.instances[col.Index]
	if row < 0 || row >= len(vec) {
		return constraint.Element{}, assignErrorf("instance row %d of %v is not provided (%d values)",
			row, col, len(vec))
	}
	return vec[row], nil
}

// QueryCell returns a cell's value and whether it was ever assigned.
// Together with QuerySelector it implements plonk.Evaluator, so the checker
// evaluates expressions directly against the assembly.
func (a *Assembly) QueryCell(col plonk.Column, row int) (constraint.Element, bool) {
	if row < 0 || row >= a.rows || !a.cs.HasColumn(col) {
		return constraint.Element{}, false
	}
	switch col.Kind {
	case plonk.Advice:
		if !a.adviceSet[col.Index].Test(uint(row)) {
			return constraint.Element{}, false
		}
		return a.advice[col.Index][row], true
	case plonk.Fixed:
		if !a.fixedSet[col.Index].Test(uint(row)) {
			return constraint.Element{}, false
		}
		return a.fixed[col.Index][row], true
	case plonk.Instance:
		vec := a.instances[col.Index]
		if row >= len(vec) {
			return constraint.Element{}, false
		}
		return vec[row], true
	}
	return constraint.Element{}, false
}

// QuerySelector reports whether the selector is enabled at the row.
func (a *Assembly) QuerySelector(sel plonk.Selector, row int) bool {
	if row < 0 || row >= a.rows || !a.cs.HasSelector(sel) {
		return false
	}
	return a.selectors[sel.Index].Test(uint(row))
}

// Instances returns the provided public-input vectors.
func (a *Assembly) Instances() [][]constraint.Element { return a.instances }

// CopyClasses returns the copy-constraint equivalence classes, deterministic
// across runs.
func (a *Assembly) CopyClasses() [][]plonk.Cell { return a.copies.classes() }

// CopyPairs returns the recorded copy constraints in recording order.
func (a *Assembly) CopyPairs() []CopyPair { return a.copies.copyPairs() }
