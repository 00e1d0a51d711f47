package plonk

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field"
)

// Evaluator supplies concrete witness values during expression evaluation.
// Row arguments are absolute; rotations are resolved before the calls.
type Evaluator interface {
	// QueryCell returns the value at an absolute cell and whether the cell
	// was ever assigned.
	QueryCell(col Column, row int) (constraint.Element, bool)
	// QuerySelector reports whether the selector is enabled at the row.
	QuerySelector(sel Selector, row int) bool
}

// EvalContext carries the state shared by every per-row evaluation.
type EvalContext struct {
	Field field.Field
	Rows  int
	Src   Evaluator
}

func (ctx *EvalContext) resolve(row int, rot Rotation) int {
	r := (row + int(rot)) % ctx.Rows
	if r < 0 {
		r += ctx.Rows
	}
	return r
}

// Expression is an immutable algebraic expression over cell queries,
// selector queries and constants. Construction is side-effect free, so the
// same tree is evaluated at every row through rotation-relative addressing.
type Expression interface {
	// Eval folds the tree through the field's ring operations at the given
	// row. It returns an UnassignedError when a queried cell has no value.
	Eval(ctx *EvalContext, row int) (constraint.Element, error)
	// Degree is the polynomial degree, counting every cell and selector
	// query as one.
	Degree() int
	// Format renders the expression, using the field to print constants.
	Format(fd field.Field) string
}

// Constant is a literal field element.
type Constant struct {
	Value constraint.Element
}

// NewConstant wraps a field element as an expression.
func NewConstant(v constraint.Element) *Constant {
	return &Constant{Value: v}
}

func (e *Constant) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	return e.Value, nil
}

func (e *Constant) Degree() int { return 0 }

func (e *Constant) Format(fd field.Field) string {
	return fd.String(e.Value)
}

// CellQuery reads one column at a rotation relative to the evaluation row.
type CellQuery struct {
	Column   Column
	Rotation Rotation
}

func (e *CellQuery) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	r := ctx.resolve(row, e.Rotation)
	v, ok := ctx.Src.QueryCell(e.Column, r)
	if !ok {
		return constraint.Element{}, &UnassignedError{Cell: Cell{Column: e.Column, Row: r}}
	}
	return v, nil
}

func (e *CellQuery) Degree() int { return 1 }

func (e *CellQuery) Format(fd field.Field) string {
	if e.Rotation == RotationCur {
		return e.Column.String()
	}
	return fmt.Sprintf("%v[%+d]", e.Column, int(e.Rotation))
}

// SelectorQuery reads a selector as a 0/1 field value.
type SelectorQuery struct {
	Selector Selector
}

func (e *SelectorQuery) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	if ctx.Src.QuerySelector(e.Selector, row) {
		return ctx.Field.One(), nil
	}
	return constraint.Element{}, nil
}

func (e *SelectorQuery) Degree() int { return 1 }

func (e *SelectorQuery) Format(fd field.Field) string {
	return e.Selector.String()
}

// Sum is the sum of its arguments.
type Sum struct {
	Args []Expression
}

func (e *Sum) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	res := constraint.Element{}
	for _, a := range e.Args {
		v, err := a.Eval(ctx, row)
		if err != nil {
			return constraint.Element{}, err
		}
		res = ctx.Field.Add(res, v)
	}
	return res, nil
}

func (e *Sum) Degree() int {
	d := 0
	for _, a := range e.Args {
		if ad := a.Degree(); ad > d {
			d = ad
		}
	}
	return d
}

func (e *Sum) Format(fd field.Field) string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.Format(fd)
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

// Product is the product of its arguments.
type Product struct {
	Args []Expression
}

func (e *Product) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	res := ctx.Field.One()
	for _, a := range e.Args {
		v, err := a.Eval(ctx, row)
		if err != nil {
			return constraint.Element{}, err
		}
		res = ctx.Field.Mul(res, v)
	}
	return res, nil
}

func (e *Product) Degree() int {
	d := 0
	for _, a := range e.Args {
		d += a.Degree()
	}
	return d
}

func (e *Product) Format(fd field.Field) string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.Format(fd)
	}
	return strings.Join(parts, " * ")
}

// Negated is the additive inverse of its inner expression.
type Negated struct {
	Inner Expression
}

func (e *Negated) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	v, err := e.Inner.Eval(ctx, row)
	if err != nil {
		return constraint.Element{}, err
	}
	return ctx.Field.Neg(v), nil
}

func (e *Negated) Degree() int { return e.Inner.Degree() }

func (e *Negated) Format(fd field.Field) string {
	return "-" + e.Inner.Format(fd)
}

// Scaled is the inner expression multiplied by a constant factor.
type Scaled struct {
	Inner  Expression
	Factor constraint.Element
}

func (e *Scaled) Eval(ctx *EvalContext, row int) (constraint.Element, error) {
	v, err := e.Inner.Eval(ctx, row)
	if err != nil {
		return constraint.Element{}, err
	}
	return ctx.Field.Mul(v, e.Factor), nil
}

func (e *Scaled) Degree() int { return e.Inner.Degree() }

func (e *Scaled) Format(fd field.Field) string {
	return fmt.Sprintf("%s * %s", fd.String(e.Factor), e.Inner.Format(fd))
}

// Add returns the sum of the given expressions.
func Add(args ...Expression) Expression {
	return &Sum{Args: args}
}

// Sub returns a minus b.
func Sub(a, b Expression) Expression {
	return &Sum{Args: []Expression{a, &Negated{Inner: b}}}
}

// Mul returns the product of the given expressions.
func Mul(args ...Expression) Expression {
	return &Product{Args: args}
}

// Neg returns the additive inverse of e.
func Neg(e Expression) Expression {
	return &Negated{Inner: e}
}

// Scale returns e multiplied by a constant factor.
func Scale(e Expression, factor constraint.Element) Expression {
	return &Scaled{Inner: e, Factor: factor}
}

// walk visits every node of the tree in depth-first order.
func walk(e Expression, visit func(Expression)) {
	visit(e)
	switch t := e.(type) {
	case *Sum:
		for _, a := range t.Args {
			walk(a, visit)
		}
	case *Product:
		for _, a := range t.Args {
			walk(a, visit)
		}
	case *Negated:
		walk(t.Inner, visit)
	case *Scaled:
		walk(t.Inner, visit)
	}
}
