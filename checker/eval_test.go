package checker_test

import (
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/require"

	halo2 "github.com/merdan-9/halo2-examples"
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field/m31"
	"github.com/merdan-9/halo2-examples/plonk"
)

var fd = &m31.Field{}

// instanceConflictCircuit binds an advice cell to a public input it does not
// match.
type instanceConflictCircuit struct {
	advice   plonk.Column
	instance plonk.Column
}

func (c *instanceConflictCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.advice = cs.AdviceColumn()
	c.instance = cs.InstanceColumn()
	cs.EnableEquality(c.advice)
	cs.EnableEquality(c.instance)
}

func (c *instanceConflictCircuit) Synthesize(l *circuit.Layouter) error {
	var cell *circuit.AssignedCell
	err := l.AssignRegion("load", func(r *circuit.Region) error {
		var err error
		cell, err = r.AssignAdvice("value", c.advice, 0, fd.FromInterface(5))
		return err
	})
	if err != nil {
		return err
	}
	return l.ConstrainInstance(cell.Cell(), c.instance, 0)
}

// constantConflictCircuit links a cell holding 6 into the equality class of
// the constant 5.
type constantConflictCircuit struct {
	advice   plonk.Column
	constCol plonk.Column
}

func (c *constantConflictCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.advice = cs.AdviceColumn()
	c.constCol = cs.FixedColumn()
	cs.EnableEquality(c.advice)
	cs.EnableConstant(c.constCol)
}

func (c *constantConflictCircuit) Synthesize(l *circuit.Layouter) error {
	var fromConst, other *circuit.AssignedCell
	err := l.AssignRegion("cells", func(r *circuit.Region) error {
		var err error
		fromConst, err = r.AssignAdviceFromConstant("five", c.advice, 0, fd.FromInterface(5))
		if err != nil {
			return err
		}
		other, err = r.AssignAdvice("six", c.advice, 1, fd.FromInterface(6))
		return err
	})
	if err != nil {
		return err
	}
	return l.ConstrainEqual(fromConst.Cell(), other.Cell())
}

// regionConflictCircuit copies across two regions, then forces an equality
// with a third cell holding a different value.
type regionConflictCircuit struct {
	advice plonk.Column
}

func (c *regionConflictCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.advice = cs.AdviceColumn()
	cs.EnableEquality(c.advice)
}

func (c *regionConflictCircuit) Synthesize(l *circuit.Layouter) error {
	var src, other *circuit.AssignedCell
	err := l.AssignRegion("first", func(r *circuit.Region) error {
		var err error
		src, err = r.AssignAdvice("one", c.advice, 0, fd.One())
		return err
	})
	if err != nil {
		return err
	}
	err = l.AssignRegion("second", func(r *circuit.Region) error {
		if _, err := r.CopyAdvice("copy of one", src, c.advice, 0); err != nil {
			return err
		}
		var err error
		other, err = r.AssignAdvice("two", c.advice, 1, fd.FromInterface(2))
		return err
	})
	if err != nil {
		return err
	}
	return l.ConstrainEqual(src.Cell(), other.Cell())
}

func TestCopyConflictSurfacesOnce(t *testing.T) {
	cases := []struct {
		name      string
		circ      circuit.Circuit
		instances [][]constraint.Element
		valueA    string
		valueB    string
	}{
		{
			name:      "instance binding",
			circ:      &instanceConflictCircuit{},
			instances: [][]constraint.Element{{fd.FromInterface(7)}},
			valueA:    "5",
			valueB:    "7",
		},
		{
			name:      "constant binding",
			circ:      &constantConflictCircuit{},
			instances: [][]constraint.Element{},
			valueA:    "5",
			valueB:    "6",
		},
		{
			name:      "inter-region copy",
			circ:      &regionConflictCircuit{},
			instances: [][]constraint.Element{},
			valueA:    "1",
			valueB:    "2",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			violations, err := halo2.Run(fd, 3, tc.circ, tc.instances)
			require.NoError(t, err)
			require.Len(t, violations, 1)
			cv, ok := violations[0].(*plonk.CopyConstraintViolation)
			require.True(t, ok, "expected a copy violation, got %s", violations[0])
			got := map[string]bool{cv.ValueA: true, cv.ValueB: true}
			require.True(t, got[tc.valueA] && got[tc.valueB],
				"violation should name both conflicting values: %s", cv)
		})
	}
}

// gapCircuit enables a gate at a row where one operand is never assigned.
type gapCircuit struct {
	colA, colB plonk.Column
	sel        plonk.Selector
}

func (c *gapCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.colA = cs.AdviceColumn()
	c.colB = cs.AdviceColumn()
	c.sel = cs.NewSelector()
	s := cs.QuerySelector(c.sel)
	a := cs.QueryAdvice(c.colA, plonk.RotationCur)
	b := cs.QueryAdvice(c.colB, plonk.RotationCur)
	cs.CreateGate("eq", c.sel, plonk.Constraint{
		Name: "a = b",
		Expr: plonk.Mul(s, plonk.Sub(a, b)),
	})
}

func (c *gapCircuit) Synthesize(l *circuit.Layouter) error {
	return l.AssignRegion("half", func(r *circuit.Region) error {
		if err := r.EnableSelector(c.sel, 0); err != nil {
			return err
		}
		_, err := r.AssignAdvice("a", c.colA, 0, fd.One())
		return err
	})
}

func TestUnassignedCellIsReportedNotFatal(t *testing.T) {
	violations, err := halo2.Run(fd, 3, &gapCircuit{}, [][]constraint.Element{})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	uv, ok := violations[0].(*plonk.UnassignedCellViolation)
	require.True(t, ok, "expected an unassigned cell report, got %s", violations[0])
	require.Equal(t, 0, uv.Row)
}

// unloadedTableCircuit registers a lookup whose table no region ever loads.
type unloadedTableCircuit struct {
	value plonk.Column
	table plonk.Column
	sel   plonk.Selector
}

func (c *unloadedTableCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.value = cs.AdviceColumn()
	c.table = cs.FixedColumn()
	c.sel = cs.NewSelector()
	cs.AddLookup("membership", c.sel, cs.QueryAdvice(c.value, plonk.RotationCur), c.table)
}

func (c *unloadedTableCircuit) Synthesize(l *circuit.Layouter) error {
	return l.AssignRegion("value", func(r *circuit.Region) error {
		if err := r.EnableSelector(c.sel, 0); err != nil {
			return err
		}
		_, err := r.AssignAdvice("value", c.value, 0, constraint.Element{})
		return err
	})
}

func TestLookupAgainstUnloadedTableFails(t *testing.T) {
	violations, err := halo2.Run(fd, 3, &unloadedTableCircuit{}, [][]constraint.Element{})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	_, ok := violations[0].(*plonk.LookupViolation)
	require.True(t, ok, "expected a lookup violation, got %s", violations[0])
}
