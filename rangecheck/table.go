package rangecheck

import (
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Table is a fixed column holding the values 0..NbValues-1 for lookup
// arguments. It must be loaded before any region whose lookup references it
// is checked; loading twice within one synthesis is a configuration error.
// The layouter tracks what was loaded, so the same Table may serve several
// syntheses of one compiled circuit.
type Table struct {
	NbValues int
	Column   plonk.Column
}

// NewTable declares the table's fixed column.
func NewTable(cs *plonk.ConstraintSystem, nbValues int) *Table {
	return &Table{NbValues: nbValues, Column: cs.FixedColumn()}
}

// Load populates rows 0..NbValues-1 with 0..NbValues-1.
func (t *Table) Load(l *circuit.Layouter) error {
	if err := l.MarkTableLoaded(t.Column); err != nil {
		return err
	}
	fd := l.Field()
	return l.AssignRegion("load range table", func(r *circuit.Region) error {
		for i := 0; i < t.NbValues; i++ {
			if _, err := r.AssignFixed("value", t.Column, i, fd.FromInterface(i)); err != nil {
				return err
			}
		}
		return nil
	})
}
