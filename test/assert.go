// Package test provides the assertion helper the gadget tests share.
package test

import (
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/require"

	halo2 "github.com/merdan-9/halo2-examples"
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Assert wraps require with the compile-synthesize-check loop.
type Assert struct {
	*require.Assertions
	t *testing.T
}

func NewAssert(t *testing.T) *Assert {
	return &Assert{Assertions: require.New(t), t: t}
}

// Satisfied compiles and synthesizes the circuit and requires the witness to
// pass every check.
func (a *Assert) Satisfied(fd field.Field, k int, circ circuit.Circuit, instances [][]constraint.Element) {
	a.t.Helper()
	violations, err := halo2.Run(fd, k, circ, instances)
	a.NoError(err)
	for _, v := range violations {
		a.t.Log(v.String())
	}
	a.Empty(violations, "witness should satisfy the circuit")
}

// NotSatisfied requires at least one violation and returns them for kind
// inspection.
func (a *Assert) NotSatisfied(fd field.Field, k int, circ circuit.Circuit, instances [][]constraint.Element) []plonk.Violation {
	a.t.Helper()
	violations, err := halo2.Run(fd, k, circ, instances)
	a.NoError(err)
	a.NotEmpty(violations, "witness should not satisfy the circuit")
	return violations
}
