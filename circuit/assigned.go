package circuit

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/plonk"
)

// AssignedCell is the result of a region assignment: the value written and,
// once the region has been placed, the cell's absolute grid address. The
// value is known as soon as the assignment call returns; the address only
// when AssignRegion returns, since the region's start row is chosen after
// its closure completes.
type AssignedCell struct {
	cell     plonk.Cell
	value    constraint.Element
	resolved bool
}

// Cell returns the absolute grid address. It panics if the owning region has
// not been placed yet; a cell must not escape its region's closure before
// AssignRegion returns.
func (a *AssignedCell) Cell() plonk.Cell {
	if !a.resolved {
		panic("cell address queried before its region was placed")
	}
	return a.cell
}

// Value returns the concrete value written into the cell.
func (a *AssignedCell) Value() constraint.Element {
	return a.value
}
