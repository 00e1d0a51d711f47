package rangecheck

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark/constraint"

	halo2 "github.com/merdan-9/halo2-examples"
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field/m31"
	"github.com/merdan-9/halo2-examples/plonk"
	"github.com/merdan-9/halo2-examples/test"
)

func TestDirectRangeCheck(t *testing.T) {
	fd := &m31.Field{}
	a := test.NewAssert(t)
	const rang = 8

	for i := 0; i < rang; i++ {
		i := i
		t.Run(fmt.Sprintf("value=%d", i), func(t *testing.T) {
			circ := &DirectCircuit{Range: rang, Value: fd.FromInterface(i)}
			a.Satisfied(fd, 4, circ, [][]constraint.Element{})
		})
	}

	for _, i := range []int{rang, rang + 1, 100} {
		i := i
		t.Run(fmt.Sprintf("value=%d out of range", i), func(t *testing.T) {
			circ := &DirectCircuit{Range: rang, Value: fd.FromInterface(i)}
			violations := a.NotSatisfied(fd, 4, circ, [][]constraint.Element{})
			for _, v := range violations {
				_, ok := v.(*plonk.ConstraintViolation)
				a.True(ok, "only the range gate should fail: %s", v)
			}
		})
	}
}

func TestMixedRangeCheck(t *testing.T) {
	fd := &m31.Field{}
	a := test.NewAssert(t)
	const rang = 8
	const lookupRange = 256
	const k = 9

	for i := 0; i < rang; i++ {
		for _, j := range []int{0, 1, i, 127, lookupRange - 1} {
			circ := &MixedCircuit{
				Range:       rang,
				LookupRange: lookupRange,
				Value:       fd.FromInterface(i),
				LookupValue: fd.FromInterface(j),
			}
			a.Satisfied(fd, k, circ, [][]constraint.Element{})
		}
	}

	t.Run("lookup value out of table", func(t *testing.T) {
		circ := &MixedCircuit{
			Range:       rang,
			LookupRange: lookupRange,
			Value:       fd.FromInterface(3),
			LookupValue: fd.FromInterface(lookupRange),
		}
		violations := a.NotSatisfied(fd, k, circ, [][]constraint.Element{})
		a.Len(violations, 1)
		_, ok := violations[0].(*plonk.LookupViolation)
		a.True(ok, "only the lookup should fail: %s", violations[0])
	})

	t.Run("direct value out of range", func(t *testing.T) {
		circ := &MixedCircuit{
			Range:       rang,
			LookupRange: lookupRange,
			Value:       fd.FromInterface(rang),
			LookupValue: fd.FromInterface(rang),
		}
		violations := a.NotSatisfied(fd, k, circ, [][]constraint.Element{})
		a.Len(violations, 1)
		_, ok := violations[0].(*plonk.ConstraintViolation)
		a.True(ok, "only the range gate should fail: %s", violations[0])
	})

	t.Run("both out", func(t *testing.T) {
		circ := &MixedCircuit{
			Range:       rang,
			LookupRange: lookupRange,
			Value:       fd.FromInterface(rang),
			LookupValue: fd.FromInterface(lookupRange + 5),
		}
		violations := a.NotSatisfied(fd, k, circ, [][]constraint.Element{})
		a.Len(violations, 2)
	})

	t.Run("table loaded twice", func(t *testing.T) {
		circ := &doubleLoadCircuit{}
		_, err := halo2.Run(fd, k, circ, [][]constraint.Element{})
		a.ErrorIs(err, plonk.ErrConfiguration)
	})
}

func TestCompiledCircuitSynthesizesRepeatedly(t *testing.T) {
	fd := &m31.Field{}
	a := test.NewAssert(t)
	circ := &MixedCircuit{
		Range:       8,
		LookupRange: 256,
		Value:       fd.FromInterface(3),
		LookupValue: fd.FromInterface(200),
	}
	cc, err := halo2.Compile(fd, 9, circ)
	a.NoError(err)

	// each synthesis gets a fresh layouter, so the table loads again
	for i := 0; i < 3; i++ {
		asm, err := cc.Synthesize([][]constraint.Element{})
		a.NoError(err)
		a.Empty(cc.Check(asm))
	}
}

// doubleLoadCircuit loads its table twice, which must abort synthesis.
type doubleLoadCircuit struct {
	config Config
}

func (c *doubleLoadCircuit) Configure(cs *plonk.ConstraintSystem) {
	value := cs.AdviceColumn()
	table := NewTable(cs, 16)
	c.config = Configure(cs, value, 4, table)
}

func (c *doubleLoadCircuit) Synthesize(l *circuit.Layouter) error {
	if err := c.config.Table.Load(l); err != nil {
		return err
	}
	return c.config.Table.Load(l)
}
