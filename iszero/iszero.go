// Package iszero provides the inverse-witness zero test: for a value v and
// an auxiliary witness inv, the expression 1 - v*inv acts as a zero
// indicator. The gate q * v * (1 - v*inv) forces the indicator to 0 whenever
// v != 0; at v = 0 the gate is vacuous and the indicator is only 1 because
// the assignment discipline writes inv = 0 there. Callers must not trust the
// indicator at v = 0 beyond that completeness contract.
package iszero

import (
	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Config holds the inverse column and the zero-indicator expression built at
// configure time. The expression is shared: enclosing gates embed it in
// their own constraints.
type Config struct {
	ValueInv plonk.Column

	isZero plonk.Expression
}

// Expr returns the zero-indicator expression 1 - value*inv.
func (c *Config) Expr() plonk.Expression {
	return c.isZero
}

// Configure registers the zero-test gate for the value expression, gated on
// sel. valueInv is the advice column the auxiliary inverse witness lives in.
func Configure(cs *plonk.ConstraintSystem, sel plonk.Selector, value plonk.Expression, valueInv plonk.Column) *Config {
	inv := cs.QueryAdvice(valueInv, plonk.RotationCur)
	isZero := plonk.Sub(plonk.NewConstant(cs.Field().One()), plonk.Mul(value, inv))
	q := cs.QuerySelector(sel)
	cs.CreateGate("is zero", sel, plonk.Constraint{
		Name: "value * (1 - value * inv) = 0",
		Expr: plonk.Mul(q, value, isZero),
	})
	return &Config{ValueInv: valueInv, isZero: isZero}
}

// Chip writes the inverse witness.
type Chip struct {
	config *Config
	fd     field.Field
}

// NewChip wraps a configured zero test.
func NewChip(config *Config, fd field.Field) *Chip {
	return &Chip{config: config, fd: fd}
}

// Assign writes inv = value^-1, or 0 when value has no inverse. The zero
// case is what makes the indicator evaluate to 1 there.
func (ch *Chip) Assign(r *circuit.Region, offset int, value constraint.Element) error {
	inv, ok := ch.fd.Inverse(value)
	if !ok {
		inv = constraint.Element{}
	}
	_, err := r.AssignAdvice("value inv", ch.config.ValueInv, offset, inv)
	return err
}
