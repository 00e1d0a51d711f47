// Package rangecheck constrains values to 0..range-1 two ways: a direct
// polynomial gate whose degree grows with the bound, and a lookup against a
// preloaded table for bounds where the polynomial would be too wide. Both
// checks can share one value column, each behind its own selector.
package rangecheck

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Config gates a value column with a direct range-check gate and, when a
// table is attached, a lookup argument.
type Config struct {
	Value       plonk.Column
	QRangeCheck plonk.Selector
	QLookup     plonk.Selector
	Range       int
	Table       *Table
}

// rangeExpr is value * (1 - value) ... ((bound-1) - value), zero exactly on
// 0..bound-1. The leading value factor covers zero itself.
func rangeExpr(cs *plonk.ConstraintSystem, bound int, value plonk.Expression) plonk.Expression {
	fd := cs.Field()
	expr := value
	for i := 1; i < bound; i++ {
		expr = plonk.Mul(expr, plonk.Sub(plonk.NewConstant(fd.FromInterface(i)), value))
	}
	return expr
}

// Configure registers the direct gate for rang over the value column, plus a
// lookup into table when table is non-nil.
func Configure(cs *plonk.ConstraintSystem, value plonk.Column, rang int, table *Table) Config {
	qRangeCheck := cs.NewSelector()
	valueQ := cs.QueryAdvice(value, plonk.RotationCur)
	q := cs.QuerySelector(qRangeCheck)
	cs.CreateGate("range check", qRangeCheck, plonk.Constraint{
		Name: "value in range",
		Expr: plonk.Mul(q, rangeExpr(cs, rang, valueQ)),
	})

	config := Config{
		Value:       value,
		QRangeCheck: qRangeCheck,
		Range:       rang,
		Table:       table,
	}
	if table != nil {
		config.QLookup = cs.NewSelector()
		cs.AddLookup("range lookup", config.QLookup, valueQ, table.Column)
	}
	return config
}

// AssignSimple places a value under the direct range-check selector.
func (c *Config) AssignSimple(l *circuit.Layouter, value constraint.Element) (out *circuit.AssignedCell, err error) {
	err = l.AssignRegion("assign for simple", func(r *circuit.Region) error {
		if err := r.EnableSelector(c.QRangeCheck, 0); err != nil {
			return err
		}
		var err error
		out, err = r.AssignAdvice("value", c.Value, 0, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssignLookup places a value under the lookup selector.
func (c *Config) AssignLookup(l *circuit.Layouter, value constraint.Element) (out *circuit.AssignedCell, err error) {
	err = l.AssignRegion("assign for lookup", func(r *circuit.Region) error {
		if err := r.EnableSelector(c.QLookup, 0); err != nil {
			return err
		}
		var err error
		out, err = r.AssignAdvice("value", c.Value, 0, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DirectCircuit range-checks one value with the polynomial gate alone.
type DirectCircuit struct {
	Range int
	Value constraint.Element

	config Config
}

func (c *DirectCircuit) Configure(cs *plonk.ConstraintSystem) {
	value := cs.AdviceColumn()
	c.config = Configure(cs, value, c.Range, nil)
}

func (c *DirectCircuit) Synthesize(l *circuit.Layouter) error {
	_, err := c.config.AssignSimple(l.Namespace("assign for simple"), c.Value)
	return err
}

// MixedCircuit checks Value with the direct gate and LookupValue with the
// table, over the same value column.
type MixedCircuit struct {
	Range       int
	LookupRange int
	Value       constraint.Element
	LookupValue constraint.Element

	config Config
}

func (c *MixedCircuit) Configure(cs *plonk.ConstraintSystem) {
	value := cs.AdviceColumn()
	table := NewTable(cs, c.LookupRange)
	c.config = Configure(cs, value, c.Range, table)
}

func (c *MixedCircuit) Synthesize(l *circuit.Layouter) error {
	// the table must be complete before any lookup row is assigned
	if err := c.config.Table.Load(l); err != nil {
		return err
	}
	if _, err := c.config.AssignSimple(l.Namespace("assign for simple"), c.Value); err != nil {
		return err
	}
	_, err := c.config.AssignLookup(l.Namespace("assign for lookup"), c.LookupValue)
	return err
}
