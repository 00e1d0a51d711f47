package fibonacci

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/field/babybear"
	"github.com/merdan-9/halo2-examples/field/bn254"
	"github.com/merdan-9/halo2-examples/field/m31"
	"github.com/merdan-9/halo2-examples/plonk"
	"github.com/merdan-9/halo2-examples/test"
)

func expected(fd field.Field, a, b constraint.Element, steps int) constraint.Element {
	// the first row already produces the third term
	for i := 0; i < steps+1; i++ {
		a, b = b, fd.Add(a, b)
	}
	return b
}

func TestFibonacci(t *testing.T) {
	for name, fd := range map[string]field.Field{
		"m31":      &m31.Field{},
		"bn254":    &bn254.Field{},
		"babybear": &babybear.Field{},
	} {
		fd := fd
		t.Run(name, func(t *testing.T) {
			a := test.NewAssert(t)
			k := 4

			f0 := fd.One()
			f1 := fd.One()
			out := expected(fd, f0, f1, 7)
			a.Equal(fd.FromInterface(55), out)

			circ := &Circuit{Steps: 7}
			instance := []constraint.Element{f0, f1, out}
			a.Satisfied(fd, k, circ, [][]constraint.Element{instance})

			instance[2] = fd.Add(out, fd.One())
			violations := a.NotSatisfied(fd, k, circ, [][]constraint.Element{instance})
			var copyViolation bool
			for _, v := range violations {
				if _, ok := v.(*plonk.CopyConstraintViolation); ok {
					copyViolation = true
				}
			}
			a.True(copyViolation, "corrupting the public output must break the terminal binding")
		})
	}
}

func TestFibonacciSeeds(t *testing.T) {
	fd := &m31.Field{}
	a := test.NewAssert(t)
	cases := []struct {
		f0, f1 uint64
		steps  int
	}{
		{0, 1, 1},
		{0, 1, 7},
		{2, 5, 4},
		{100, 3, 11},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("seed(%d,%d)/steps=%d", tc.f0, tc.f1, tc.steps), func(t *testing.T) {
			f0 := fd.FromInterface(tc.f0)
			f1 := fd.FromInterface(tc.f1)
			out := expected(fd, f0, f1, tc.steps)
			instance := []constraint.Element{f0, f1, out}
			a.Satisfied(fd, 5, &Circuit{Steps: tc.steps}, [][]constraint.Element{instance})

			instance[2] = fd.Add(out, fd.One())
			a.NotSatisfied(fd, 5, &Circuit{Steps: tc.steps}, [][]constraint.Element{instance})
		})
	}
}
