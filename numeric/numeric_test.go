package numeric

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/field/bn254"
	"github.com/merdan-9/halo2-examples/field/m31"
	"github.com/merdan-9/halo2-examples/test"
)

func expected(fd field.Field, k, a, b constraint.Element) constraint.Element {
	asq := fd.Mul(a, a)
	bsq := fd.Mul(b, b)
	return fd.Mul(k, fd.Mul(asq, bsq))
}

func TestMulChain(t *testing.T) {
	for name, fd := range map[string]field.Field{
		"m31":   &m31.Field{},
		"bn254": &bn254.Field{},
	} {
		fd := fd
		t.Run(name, func(t *testing.T) {
			a := test.NewAssert(t)

			k := fd.FromInterface(7)
			x := fd.FromInterface(2)
			y := fd.FromInterface(3)
			out := expected(fd, k, x, y)
			a.Equal(fd.FromInterface(252), out)

			circ := &Circuit{Constant: k, A: x, B: y}
			instance := []constraint.Element{out}
			a.Satisfied(fd, 4, circ, [][]constraint.Element{instance})

			instance[0] = fd.Add(out, fd.One())
			a.NotSatisfied(fd, 4, circ, [][]constraint.Element{instance})
		})
	}
}

func TestMulChainValues(t *testing.T) {
	fd := &m31.Field{}
	a := test.NewAssert(t)
	cases := []struct {
		k, x, y uint64
	}{
		{0, 5, 9},
		{1, 0, 12345},
		{13, 1, 1},
		{999, 1 << 20, 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("k=%d,a=%d,b=%d", tc.k, tc.x, tc.y), func(t *testing.T) {
			k := fd.FromInterface(tc.k)
			x := fd.FromInterface(tc.x)
			y := fd.FromInterface(tc.y)
			circ := &Circuit{Constant: k, A: x, B: y}
			instance := []constraint.Element{expected(fd, k, x, y)}
			a.Satisfied(fd, 4, circ, [][]constraint.Element{instance})
		})
	}
}
