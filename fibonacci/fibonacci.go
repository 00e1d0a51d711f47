// Package fibonacci chains additions through a three-column layout: every
// row satisfies a + b = c, and copy constraints stitch one row's (b, c) into
// the next row's (a, b).
package fibonacci

import (
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Config is the chip's column layout.
type Config struct {
	ColA     plonk.Column
	ColB     plonk.Column
	ColC     plonk.Column
	Instance plonk.Column
	Selector plonk.Selector
}

// Chip assigns recurrence rows through a layouter.
type Chip struct {
	config Config
	fd     field.Field
}

// Configure declares the chip's columns and its addition gate.
func Configure(cs *plonk.ConstraintSystem) Config {
	colA := cs.AdviceColumn()
	colB := cs.AdviceColumn()
	colC := cs.AdviceColumn()
	instance := cs.InstanceColumn()
	selector := cs.NewSelector()

	cs.EnableEquality(colA)
	cs.EnableEquality(colB)
	cs.EnableEquality(colC)
	cs.EnableEquality(instance)

	a := cs.QueryAdvice(colA, plonk.RotationCur)
	b := cs.QueryAdvice(colB, plonk.RotationCur)
	c := cs.QueryAdvice(colC, plonk.RotationCur)
	s := cs.QuerySelector(selector)
	cs.CreateGate("add", selector, plonk.Constraint{
		Name: "a + b = c",
		Expr: plonk.Mul(s, plonk.Sub(plonk.Add(a, b), c)),
	})

	return Config{
		ColA:     colA,
		ColB:     colB,
		ColC:     colC,
		Instance: instance,
		Selector: selector,
	}
}

// NewChip wraps a configured layout.
func NewChip(config Config, fd field.Field) *Chip {
	return &Chip{config: config, fd: fd}
}

// AssignFirstRow seeds the chain from the first two public inputs and
// computes their sum.
func (ch *Chip) AssignFirstRow(l *circuit.Layouter) (a, b, c *circuit.AssignedCell, err error) {
	err = l.AssignRegion("first row", func(r *circuit.Region) error {
		if err := r.EnableSelector(ch.config.Selector, 0); err != nil {
			return err
		}
		var err error
		a, err = r.AssignAdviceFromInstance("f(0)", ch.config.Instance, 0, ch.config.ColA, 0)
		if err != nil {
			return err
		}
		b, err = r.AssignAdviceFromInstance("f(1)", ch.config.Instance, 1, ch.config.ColB, 0)
		if err != nil {
			return err
		}
		c, err = r.AssignAdvice("f(0) + f(1)", ch.config.ColC, 0, ch.fd.Add(a.Value(), b.Value()))
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

// AssignRow copies the previous row's (b, c) into (a, b) and computes the
// next term.
func (ch *Chip) AssignRow(l *circuit.Layouter, prevB, prevC *circuit.AssignedCell) (c *circuit.AssignedCell, err error) {
	err = l.AssignRegion("next row", func(r *circuit.Region) error {
		if err := r.EnableSelector(ch.config.Selector, 0); err != nil {
			return err
		}
		if _, err := r.CopyAdvice("a", prevB, ch.config.ColA, 0); err != nil {
			return err
		}
		if _, err := r.CopyAdvice("b", prevC, ch.config.ColB, 0); err != nil {
			return err
		}
		var err error
		c, err = r.AssignAdvice("c", ch.config.ColC, 0, ch.fd.Add(prevB.Value(), prevC.Value()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ExposePublic binds a cell to a public-input row.
func (ch *Chip) ExposePublic(l *circuit.Layouter, cell *circuit.AssignedCell, row int) error {
	return l.ConstrainInstance(cell.Cell(), ch.config.Instance, row)
}

// Circuit runs the recurrence for Steps rows beyond the first and binds the
// final term to instance row 2. The public-input vector is (f(0), f(1),
// expected output).
type Circuit struct {
	Steps int

	config Config
}

func (c *Circuit) Configure(cs *plonk.ConstraintSystem) {
	c.config = Configure(cs)
}

func (c *Circuit) Synthesize(l *circuit.Layouter) error {
	chip := NewChip(c.config, l.Field())
	_, prevB, prevC, err := chip.AssignFirstRow(l.Namespace("first row"))
	if err != nil {
		return err
	}
	for i := 0; i < c.Steps; i++ {
		cell, err := chip.AssignRow(l.Namespace("next row"), prevB, prevC)
		if err != nil {
			return err
		}
		prevB = prevC
		prevC = cell
	}
	return chip.ExposePublic(l.Namespace("out"), prevC, 2)
}
