package iszero

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/plonk"
)

// ComposeConfig is the layout of the branching example f(a, b, c) =
// a == b ? c : a - b, built on the zero test of a - b.
type ComposeConfig struct {
	A        plonk.Column
	B        plonk.Column
	C        plonk.Column
	Output   plonk.Column
	Selector plonk.Selector
	AEqualsB *Config
}

// ConfigureCompose declares the example's columns and gates.
func ConfigureCompose(cs *plonk.ConstraintSystem) ComposeConfig {
	selector := cs.NewSelector()
	a := cs.AdviceColumn()
	b := cs.AdviceColumn()
	c := cs.AdviceColumn()
	output := cs.AdviceColumn()
	isZeroAdvice := cs.AdviceColumn()

	aQ := cs.QueryAdvice(a, plonk.RotationCur)
	bQ := cs.QueryAdvice(b, plonk.RotationCur)
	aEqualsB := Configure(cs, selector, plonk.Sub(aQ, bQ), isZeroAdvice)

	s := cs.QuerySelector(selector)
	cQ := cs.QueryAdvice(c, plonk.RotationCur)
	outQ := cs.QueryAdvice(output, plonk.RotationCur)
	one := plonk.NewConstant(cs.Field().One())
	cs.CreateGate("f(a, b, c) = a == b ? c : a - b", selector,
		plonk.Constraint{
			Name: "output = c when a = b",
			Expr: plonk.Mul(s, aEqualsB.Expr(), plonk.Sub(outQ, cQ)),
		},
		plonk.Constraint{
			Name: "output = a - b when a != b",
			Expr: plonk.Mul(s, plonk.Sub(one, aEqualsB.Expr()), plonk.Sub(outQ, plonk.Sub(aQ, bQ))),
		},
	)

	return ComposeConfig{
		A:        a,
		B:        b,
		C:        c,
		Output:   output,
		Selector: selector,
		AEqualsB: aEqualsB,
	}
}

// ComposeChip assigns one evaluation of f.
type ComposeChip struct {
	config ComposeConfig
}

// NewComposeChip wraps a configured layout.
func NewComposeChip(config ComposeConfig) *ComposeChip {
	return &ComposeChip{config: config}
}

// Assign writes a, b, c, the zero-test witness for a - b and the selected
// output into one row, returning the output cell.
func (ch *ComposeChip) Assign(l *circuit.Layouter, a, b, c constraint.Element) (out *circuit.AssignedCell, err error) {
	fd := l.Field()
	isZeroChip := NewChip(ch.config.AEqualsB, fd)
	err = l.AssignRegion("f(a, b, c)", func(r *circuit.Region) error {
		if err := r.EnableSelector(ch.config.Selector, 0); err != nil {
			return err
		}
		if _, err := r.AssignAdvice("a", ch.config.A, 0, a); err != nil {
			return err
		}
		if _, err := r.AssignAdvice("b", ch.config.B, 0, b); err != nil {
			return err
		}
		if _, err := r.AssignAdvice("c", ch.config.C, 0, c); err != nil {
			return err
		}
		if err := isZeroChip.Assign(r, 0, fd.Sub(a, b)); err != nil {
			return err
		}
		output := fd.Sub(a, b)
		if a == b {
			output = c
		}
		var err error
		out, err = r.AssignAdvice("output", ch.config.Output, 0, output)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ComposeCircuit evaluates f(A, B, C) once. The computed output is exposed
// on the struct after synthesis so callers can read it back.
type ComposeCircuit struct {
	A constraint.Element
	B constraint.Element
	C constraint.Element

	Output constraint.Element

	config ComposeConfig
}

func (c *ComposeCircuit) Configure(cs *plonk.ConstraintSystem) {
	c.config = ConfigureCompose(cs)
}

func (c *ComposeCircuit) Synthesize(l *circuit.Layouter) error {
	chip := NewComposeChip(c.config)
	out, err := chip.Assign(l, c.A, c.B, c.C)
	if err != nil {
		return err
	}
	c.Output = out.Value()
	return nil
}
