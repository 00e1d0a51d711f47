// Package numeric implements the field-multiplication example: a chip
// exposing load/multiply/expose instructions over a two-column layout, and a
// circuit using it to compute constant * a^2 * b^2.
package numeric

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Number is a value the chip has placed in the grid.
type Number struct {
	cell *circuit.AssignedCell
}

// Value returns the concrete value.
func (n Number) Value() constraint.Element {
	return n.cell.Value()
}

// Instructions is the capability the circuit programs against; the chip is
// its only implementation here, but gadgets written against the interface do
// not care how the layout looks.
type Instructions interface {
	LoadPrivate(l *circuit.Layouter, value constraint.Element) (Number, error)
	LoadConstant(l *circuit.Layouter, constant constraint.Element) (Number, error)
	Mul(l *circuit.Layouter, a, b Number) (Number, error)
	ExposePublic(l *circuit.Layouter, n Number, row int) error
}

// Config is the chip's column layout.
type Config struct {
	Advice   [2]plonk.Column
	Instance plonk.Column
	Selector plonk.Selector
}

// Chip implements Instructions with a multiplication gate whose output sits
// one row below its operands.
type Chip struct {
	config Config
	fd     field.Field
}

// Configure declares equality, the constants column and the mul gate over
// the given columns.
func Configure(cs *plonk.ConstraintSystem, advice [2]plonk.Column, instance plonk.Column, constants plonk.Column) Config {
	cs.EnableEquality(instance)
	cs.EnableConstant(constants)
	for _, col := range advice {
		cs.EnableEquality(col)
	}
	selector := cs.NewSelector()

	lhs := cs.QueryAdvice(advice[0], plonk.RotationCur)
	rhs := cs.QueryAdvice(advice[1], plonk.RotationCur)
	out := cs.QueryAdvice(advice[0], plonk.RotationNext)
	s := cs.QuerySelector(selector)
	cs.CreateGate("mul", selector, plonk.Constraint{
		Name: "lhs * rhs = out",
		Expr: plonk.Mul(s, plonk.Sub(plonk.Mul(lhs, rhs), out)),
	})

	return Config{Advice: advice, Instance: instance, Selector: selector}
}

// NewChip wraps a configured layout.
func NewChip(config Config, fd field.Field) *Chip {
	return &Chip{config: config, fd: fd}
}

func (ch *Chip) LoadPrivate(l *circuit.Layouter, value constraint.Element) (Number, error) {
	var n Number
	err := l.AssignRegion("load private", func(r *circuit.Region) error {
		cell, err := r.AssignAdvice("private input", ch.config.Advice[0], 0, value)
		n.cell = cell
		return err
	})
	return n, err
}

func (ch *Chip) LoadConstant(l *circuit.Layouter, constant constraint.Element) (Number, error) {
	var n Number
	err := l.AssignRegion("load constant", func(r *circuit.Region) error {
		cell, err := r.AssignAdviceFromConstant("constant value", ch.config.Advice[0], 0, constant)
		n.cell = cell
		return err
	})
	return n, err
}

func (ch *Chip) Mul(l *circuit.Layouter, a, b Number) (Number, error) {
	var n Number
	err := l.AssignRegion("mul", func(r *circuit.Region) error {
		if err := r.EnableSelector(ch.config.Selector, 0); err != nil {
			return err
		}
		if _, err := r.CopyAdvice("lhs", a.cell, ch.config.Advice[0], 0); err != nil {
			return err
		}
		if _, err := r.CopyAdvice("rhs", b.cell, ch.config.Advice[1], 0); err != nil {
			return err
		}
		cell, err := r.AssignAdvice("lhs * rhs", ch.config.Advice[0], 1, ch.fd.Mul(a.cell.Value(), b.cell.Value()))
		n.cell = cell
		return err
	})
	return n, err
}

func (ch *Chip) ExposePublic(l *circuit.Layouter, n Number, row int) error {
	return l.ConstrainInstance(n.cell.Cell(), ch.config.Instance, row)
}

// Circuit computes Constant * A^2 * B^2 by chaining three multiplications
// and binds the result to instance row 0.
type Circuit struct {
	Constant constraint.Element
	A        constraint.Element
	B        constraint.Element

	config Config
}

func (c *Circuit) Configure(cs *plonk.ConstraintSystem) {
	advice := [2]plonk.Column{cs.AdviceColumn(), cs.AdviceColumn()}
	instance := cs.InstanceColumn()
	constants := cs.FixedColumn()
	c.config = Configure(cs, advice, instance, constants)
}

func (c *Circuit) Synthesize(l *circuit.Layouter) error {
	var chip Instructions = NewChip(c.config, l.Field())

	a, err := chip.LoadPrivate(l.Namespace("load a"), c.A)
	if err != nil {
		return err
	}
	b, err := chip.LoadPrivate(l.Namespace("load b"), c.B)
	if err != nil {
		return err
	}
	constant, err := chip.LoadConstant(l.Namespace("load constant"), c.Constant)
	if err != nil {
		return err
	}
	ab, err := chip.Mul(l.Namespace("a * b"), a, b)
	if err != nil {
		return err
	}
	absq, err := chip.Mul(l.Namespace("ab * ab"), ab, ab)
	if err != nil {
		return err
	}
	out, err := chip.Mul(l.Namespace("constant * ab^2"), constant, absq)
	if err != nil {
		return err
	}
	return chip.ExposePublic(l.Namespace("expose out"), out, 0)
}
