// Package circuit turns a circuit description into a populated witness grid.
// The layouter places regions, the copy tracker accumulates forced
// equalities, and the assembly is the resulting grid handed to the checker
// or a proving backend.
package circuit

import (
	"github.com/merdan-9/halo2-examples/plonk"
)

// Circuit is one circuit shape. Configure declares columns, selectors, gates
// and lookups on the constraint system; Synthesize populates a witness
// through the layouter. Configure runs once per shape, Synthesize once per
// instance.
type Circuit interface {
	Configure(cs *plonk.ConstraintSystem)
	Synthesize(l *Layouter) error
}
