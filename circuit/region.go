package circuit

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/plonk"
)

// regionWrite is one buffered cell assignment, offset-relative until the
// region is placed.
type regionWrite struct {
	name   string
	column plonk.Column
	offset int
	value  constraint.Element
	out    *AssignedCell

	// at most one of the two: an absolute peer cell to copy-constrain the
	// written cell against, or a link to the deduplicated constants cell
	// holding value
	copyPeer *plonk.Cell
	constant bool
}

type regionSelector struct {
	sel    plonk.Selector
	offset int
}

// Region is the scoped context handed to an AssignRegion closure. Rows are
// addressed relative to the region's start, which the layouter picks only
// after the closure returns; everything a region does is buffered until
// then.
type Region struct {
	layouter *Layouter
	name     string

	writes    []regionWrite
	selectors []regionSelector
	height    int
}

func (r *Region) grow(offset int) {
	if offset+1 > r.height {
		r.height = offset + 1
	}
}

// EnableSelector turns sel on at the region-relative row.
func (r *Region) EnableSelector(sel plonk.Selector, offset int) error {
	if !r.layouter.cs.HasSelector(sel) {
		return assignErrorf("undeclared %v", sel)
	}
	if offset < 0 {
		return assignErrorf("negative offset %d for %v", offset, sel)
	}
	r.selectors = append(r.selectors, regionSelector{sel: sel, offset: offset})
	r.grow(offset)
	return nil
}

func (r *Region) push(name string, col plonk.Column, offset int, v constraint.Element, kind plonk.ColumnKind) (*AssignedCell, error) {
	if col.Kind != kind {
		return nil, assignErrorf("%q: expected an %v column, got %v", name, kind, col)
	}
	if !r.layouter.cs.HasColumn(col) {
		return nil, assignErrorf("%q: undeclared column %v", name, col)
	}
	if offset < 0 {
		return nil, assignErrorf("%q: negative offset %d", name, offset)
	}
	out := &AssignedCell{value: v}
	r.writes = append(r.writes, regionWrite{
		name:   name,
		column: col,
		offset: offset,
		value:  v,
		out:    out,
	})
	r.grow(offset)
	return out, nil
}

// AssignAdvice writes a fresh witness value at the region-relative row.
func (r *Region) AssignAdvice(name string, col plonk.Column, offset int, v constraint.Element) (*AssignedCell, error) {
	return r.push(name, col, offset, v, plonk.Advice)
}

// AssignFixed writes a circuit-shape value, the table-loading path.
func (r *Region) AssignFixed(name string, col plonk.Column, offset int, v constraint.Element) (*AssignedCell, error) {
	return r.push(name, col, offset, v, plonk.Fixed)
}

// AssignAdviceFromInstance copies the public input at (instance, row) into
// an advice cell and copy-constrains the two.
func (r *Region) AssignAdviceFromInstance(name string, instance plonk.Column, row int, col plonk.Column, offset int) (*AssignedCell, error) {
	if instance.Kind != plonk.Instance {
		return nil, assignErrorf("%q: %v is not an instance column", name, instance)
	}
	if !r.layouter.cs.HasColumn(instance) {
		return nil, assignErrorf("%q: undeclared column %v", name, instance)
	}
	v, err := r.layouter.asm.instanceValue(instance, row)
	if err != nil {
		return nil, err
	}
	out, err := r.push(name, col, offset, v, plonk.Advice)
	if err != nil {
		return nil, err
	}
	peer := plonk.Cell{Column: instance, Row: row}
	r.writes[len(r.writes)-1].copyPeer = &peer
	return out, nil
}

// AssignAdviceFromConstant writes a constant into an advice cell and
// copy-constrains it to the constants column's cell for that value.
func (r *Region) AssignAdviceFromConstant(name string, col plonk.Column, offset int, v constraint.Element) (*AssignedCell, error) {
	if _, ok := r.layouter.cs.ConstantsColumn(); !ok {
		return nil, assignErrorf("%q: no constants column registered", name)
	}
	out, err := r.push(name, col, offset, v, plonk.Advice)
	if err != nil {
		return nil, err
	}
	r.writes[len(r.writes)-1].constant = true
	return out, nil
}

// CopyAdvice writes src's value at the region-relative row and records the
// copy constraint. src must come from a region that has already been placed.
func (r *Region) CopyAdvice(name string, src *AssignedCell, col plonk.Column, offset int) (*AssignedCell, error) {
	if src == nil || !src.resolved {
		return nil, assignErrorf("%q: copy source is not placed yet", name)
	}
	out, err := r.push(name, col, offset, src.value, plonk.Advice)
	if err != nil {
		return nil, err
	}
	peer := src.cell
	r.writes[len(r.writes)-1].copyPeer = &peer
	return out, nil
}
