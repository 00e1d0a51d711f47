package circuit

import (
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/stretchr/testify/require"

	"github.com/merdan-9/halo2-examples/field/m31"
	"github.com/merdan-9/halo2-examples/plonk"
)

func newTestSystem(t *testing.T) (*plonk.ConstraintSystem, plonk.Column, plonk.Column, plonk.Selector) {
	t.Helper()
	cs := plonk.NewConstraintSystem(&m31.Field{})
	a := cs.AdviceColumn()
	b := cs.AdviceColumn()
	s := cs.NewSelector()
	cs.EnableEquality(a)
	cs.EnableEquality(b)
	q := cs.QuerySelector(s)
	cs.CreateGate("noop", s, plonk.Constraint{
		Name: "zero",
		Expr: plonk.Mul(q, plonk.NewConstant(constraint.Element{})),
	})
	cs.Finalize()
	return cs, a, b, s
}

func newTestLayouter(t *testing.T, cs *plonk.ConstraintSystem, k int) (*Layouter, *Assembly) {
	t.Helper()
	asm, err := NewAssembly(cs, k, nil)
	require.NoError(t, err)
	return NewLayouter(cs, asm), asm
}

func TestRegionPackingPerColumn(t *testing.T) {
	fd := &m31.Field{}
	cs, a, b, _ := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 3)

	var inA, inB, second *AssignedCell
	require.NoError(t, l.AssignRegion("a only", func(r *Region) error {
		var err error
		inA, err = r.AssignAdvice("x", a, 0, fd.One())
		return err
	}))
	// touches only column b, so it shares row 0 with the first region
	require.NoError(t, l.AssignRegion("b only", func(r *Region) error {
		var err error
		inB, err = r.AssignAdvice("y", b, 0, fd.One())
		return err
	}))
	// touches column a again, so it stacks below the first region
	require.NoError(t, l.AssignRegion("a again", func(r *Region) error {
		var err error
		second, err = r.AssignAdvice("z", a, 0, fd.One())
		return err
	}))

	require.Equal(t, 0, inA.Cell().Row)
	require.Equal(t, 0, inB.Cell().Row)
	require.Equal(t, 1, second.Cell().Row)
}

func TestRegionDoesNotFitGrid(t *testing.T) {
	fd := &m31.Field{}
	cs, a, _, _ := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 1)

	err := l.AssignRegion("too tall", func(r *Region) error {
		for i := 0; i < 3; i++ {
			if _, err := r.AssignAdvice("x", a, i, fd.One()); err != nil {
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, ErrAssignment)
}

func TestConflictingAssignment(t *testing.T) {
	fd := &m31.Field{}
	cs, a, _, _ := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 3)

	err := l.AssignRegion("conflict", func(r *Region) error {
		if _, err := r.AssignAdvice("x", a, 0, fd.One()); err != nil {
			return err
		}
		_, err := r.AssignAdvice("y", a, 0, fd.FromInterface(2))
		return err
	})
	require.ErrorIs(t, err, ErrAssignment)

	// re-assigning the identical value is a no-op
	require.NoError(t, l.AssignRegion("idempotent", func(r *Region) error {
		if _, err := r.AssignAdvice("x", a, 0, fd.One()); err != nil {
			return err
		}
		_, err := r.AssignAdvice("y", a, 0, fd.One())
		return err
	}))
}

func TestRegionRejectsBadHandles(t *testing.T) {
	fd := &m31.Field{}
	cs, a, _, s := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 3)

	require.ErrorIs(t, l.AssignRegion("bad column", func(r *Region) error {
		_, err := r.AssignAdvice("x", plonk.Column{Index: 9, Kind: plonk.Advice}, 0, fd.One())
		return err
	}), ErrAssignment)

	require.ErrorIs(t, l.AssignRegion("bad kind", func(r *Region) error {
		_, err := r.AssignFixed("x", a, 0, fd.One())
		return err
	}), ErrAssignment)

	require.ErrorIs(t, l.AssignRegion("bad offset", func(r *Region) error {
		return r.EnableSelector(s, -1)
	}), ErrAssignment)

	require.ErrorIs(t, l.AssignRegion("bad selector", func(r *Region) error {
		return r.EnableSelector(plonk.Selector{Index: 4}, 0)
	}), ErrAssignment)
}

func TestCopyBeforePlacement(t *testing.T) {
	fd := &m31.Field{}
	cs, a, b, _ := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 3)

	err := l.AssignRegion("self copy", func(r *Region) error {
		cell, err := r.AssignAdvice("x", a, 0, fd.One())
		if err != nil {
			return err
		}
		// cell has no absolute address until the region is placed
		_, err = r.CopyAdvice("y", cell, b, 0)
		return err
	})
	require.ErrorIs(t, err, ErrAssignment)
}

func TestCopyRecordsConstraint(t *testing.T) {
	fd := &m31.Field{}
	cs, a, b, _ := newTestSystem(t)
	l, asm := newTestLayouter(t, cs, 3)

	var src *AssignedCell
	require.NoError(t, l.AssignRegion("src", func(r *Region) error {
		var err error
		src, err = r.AssignAdvice("x", a, 0, fd.FromInterface(9))
		return err
	}))
	var dst *AssignedCell
	require.NoError(t, l.AssignRegion("dst", func(r *Region) error {
		var err error
		dst, err = r.CopyAdvice("y", src, b, 0)
		return err
	}))

	require.Equal(t, src.Value(), dst.Value())
	classes := asm.CopyClasses()
	require.Len(t, classes, 1)
	require.ElementsMatch(t, []plonk.Cell{src.Cell(), dst.Cell()}, classes[0])
}

func TestEqualityRequiredForCopies(t *testing.T) {
	fd := &m31.Field{}
	cs := plonk.NewConstraintSystem(&m31.Field{})
	a := cs.AdviceColumn()
	b := cs.AdviceColumn()
	cs.EnableEquality(a)
	// no equality on b
	cs.Finalize()
	asm, err := NewAssembly(cs, 3, nil)
	require.NoError(t, err)
	l := NewLayouter(cs, asm)

	var src *AssignedCell
	require.NoError(t, l.AssignRegion("src", func(r *Region) error {
		src, err = r.AssignAdvice("x", a, 0, fd.One())
		return err
	}))
	err = l.AssignRegion("dst", func(r *Region) error {
		_, err := r.CopyAdvice("y", src, b, 0)
		return err
	})
	require.ErrorIs(t, err, plonk.ErrConfiguration)
}

func TestConstantsAreDeduplicated(t *testing.T) {
	fd := &m31.Field{}
	cs := plonk.NewConstraintSystem(fd)
	a := cs.AdviceColumn()
	constants := cs.FixedColumn()
	cs.EnableEquality(a)
	cs.EnableConstant(constants)
	cs.Finalize()
	asm, err := NewAssembly(cs, 3, nil)
	require.NoError(t, err)
	l := NewLayouter(cs, asm)

	require.NoError(t, l.AssignRegion("constants", func(r *Region) error {
		if _, err := r.AssignAdviceFromConstant("five", a, 0, fd.FromInterface(5)); err != nil {
			return err
		}
		if _, err := r.AssignAdviceFromConstant("five again", a, 1, fd.FromInterface(5)); err != nil {
			return err
		}
		_, err := r.AssignAdviceFromConstant("six", a, 2, fd.FromInterface(6))
		return err
	}))

	// two distinct constants occupy two fixed rows
	v0, ok := asm.QueryCell(constants, 0)
	require.True(t, ok)
	require.Equal(t, fd.FromInterface(5), v0)
	v1, ok := asm.QueryCell(constants, 1)
	require.True(t, ok)
	require.Equal(t, fd.FromInterface(6), v1)
	_, ok = asm.QueryCell(constants, 2)
	require.False(t, ok)

	// three advice cells in two classes
	require.Len(t, asm.CopyClasses(), 2)
}

func TestInstanceRowOutOfRange(t *testing.T) {
	cs := plonk.NewConstraintSystem(&m31.Field{})
	a := cs.AdviceColumn()
	instance := cs.InstanceColumn()
	cs.EnableEquality(a)
	cs.EnableEquality(instance)
	cs.Finalize()
	asm, err := NewAssembly(cs, 3, [][]constraint.Element{{constraint.Element{}}})
	require.NoError(t, err)
	l := NewLayouter(cs, asm)

	err = l.AssignRegion("load", func(r *Region) error {
		_, err := r.AssignAdviceFromInstance("beyond", instance, 5, a, 0)
		return err
	})
	require.ErrorIs(t, err, ErrAssignment)
}

func TestNamespacePrefixesRegionNames(t *testing.T) {
	cs, a, _, _ := newTestSystem(t)
	l, _ := newTestLayouter(t, cs, 3)
	fd := &m31.Field{}

	child := l.Namespace("outer").Namespace("inner")
	err := child.AssignRegion("region", func(r *Region) error {
		_, err := r.AssignAdvice("x", a, -1, fd.One())
		return err
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"outer/inner/region"`)
}

func TestAssemblyValidation(t *testing.T) {
	cs := plonk.NewConstraintSystem(&m31.Field{})
	cs.InstanceColumn()
	cs.Finalize()

	_, err := NewAssembly(cs, 0, [][]constraint.Element{{}})
	require.ErrorIs(t, err, plonk.ErrConfiguration)

	_, err = NewAssembly(cs, 3, nil)
	require.ErrorIs(t, err, plonk.ErrConfiguration)

	_, err = NewAssembly(cs, 1, [][]constraint.Element{make([]constraint.Element, 5)})
	require.ErrorIs(t, err, plonk.ErrConfiguration)

	unfinalized := plonk.NewConstraintSystem(&m31.Field{})
	_, err = NewAssembly(unfinalized, 3, nil)
	require.ErrorIs(t, err, plonk.ErrConfiguration)
}
