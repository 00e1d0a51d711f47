package plonk

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/logger"

	"github.com/merdan-9/halo2-examples/field"
)

// Constraint is one named polynomial identity inside a gate.
type Constraint struct {
	Name string
	Expr Expression
}

// Gate is a named group of constraints activated by one selector. The
// registry does not gate the expressions itself: every constraint must embed
// the selector as a multiplicative factor, so the polynomial vanishes on
// disabled rows exactly as it would in a backend that evaluates it over the
// whole grid. The declared selector tells the checker which rows to visit
// and names the gate in reports.
type Gate struct {
	Name        string
	Selector    Selector
	Constraints []Constraint
}

// Lookup requires the input expression's value to appear somewhere in the
// table column, at every row where the selector is enabled. Membership, not
// positional equality.
type Lookup struct {
	Name     string
	Selector Selector
	Input    Expression
	Table    Column
}

// ConstraintSystem accumulates a circuit shape: columns, selectors, gates,
// lookups and equality flags. It is mutated while a circuit's Configure
// runs, then frozen by Finalize. Configuration is single-threaded.
//
// Methods that receive invalid handles panic with an error wrapping
// ErrConfiguration; the compile boundary recovers it into a returned error.
type ConstraintSystem struct {
	fd field.Field

	nbAdvice   int
	nbFixed    int
	nbInstance int
	nbSelector int

	gates   []Gate
	lookups []Lookup

	// equality-enabled column indexes, indexed by ColumnKind
	equality [3]*bitset.BitSet

	constants    Column
	hasConstants bool

	finalized bool
	maxDegree int
}

// NewConstraintSystem returns an empty system over the given field.
func NewConstraintSystem(fd field.Field) *ConstraintSystem {
	cs := &ConstraintSystem{fd: fd}
	for i := range cs.equality {
		cs.equality[i] = bitset.New(8)
	}
	return cs
}

// Field returns the field the system is configured over.
func (cs *ConstraintSystem) Field() field.Field {
	return cs.fd
}

func (cs *ConstraintSystem) mutate() {
	if cs.finalized {
		panic(configErrorf("constraint system is finalized"))
	}
}

// AdviceColumn declares a new advice column.
func (cs *ConstraintSystem) AdviceColumn() Column {
	cs.mutate()
	c := Column{Index: cs.nbAdvice, Kind: Advice}
	cs.nbAdvice++
	return c
}

// FixedColumn declares a new fixed column.
func (cs *ConstraintSystem) FixedColumn() Column {
	cs.mutate()
	c := Column{Index: cs.nbFixed, Kind: Fixed}
	cs.nbFixed++
	return c
}

// InstanceColumn declares a new instance column.
func (cs *ConstraintSystem) InstanceColumn() Column {
	cs.mutate()
	c := Column{Index: cs.nbInstance, Kind: Instance}
	cs.nbInstance++
	return c
}

// NewSelector declares a new selector.
func (cs *ConstraintSystem) NewSelector() Selector {
	cs.mutate()
	s := Selector{Index: cs.nbSelector}
	cs.nbSelector++
	return s
}

// HasColumn reports whether the column handle was declared by this system.
func (cs *ConstraintSystem) HasColumn(col Column) bool {
	if col.Index < 0 {
		return false
	}
	switch col.Kind {
	case Advice:
		return col.Index < cs.nbAdvice
	case Fixed:
		return col.Index < cs.nbFixed
	case Instance:
		return col.Index < cs.nbInstance
	}
	return false
}

// HasSelector reports whether the selector handle was declared by this
// system.
func (cs *ConstraintSystem) HasSelector(sel Selector) bool {
	return sel.Index >= 0 && sel.Index < cs.nbSelector
}

func (cs *ConstraintSystem) checkColumn(col Column) {
	if !cs.HasColumn(col) {
		panic(configErrorf("undeclared column %v", col))
	}
}

func (cs *ConstraintSystem) checkSelector(sel Selector) {
	if !cs.HasSelector(sel) {
		panic(configErrorf("undeclared selector %v", sel))
	}
}

// EnableEquality allows cells of the column to participate in copy
// constraints.
func (cs *ConstraintSystem) EnableEquality(col Column) {
	cs.mutate()
	cs.checkColumn(col)
	cs.equality[col.Kind].Set(uint(col.Index))
}

// EqualityEnabled reports whether the column accepts copy constraints.
func (cs *ConstraintSystem) EqualityEnabled(col Column) bool {
	if !cs.HasColumn(col) {
		return false
	}
	return cs.equality[col.Kind].Test(uint(col.Index))
}

// EnableConstant registers the fixed column that receives deduplicated
// constants and enables equality on it. At most one constants column may be
// registered.
func (cs *ConstraintSystem) EnableConstant(col Column) {
	cs.mutate()
	cs.checkColumn(col)
	if col.Kind != Fixed {
		panic(configErrorf("constants column must be fixed, got %v", col))
	}
	if cs.hasConstants {
		panic(configErrorf("constants column already set to %v", cs.constants))
	}
	cs.constants = col
	cs.hasConstants = true
	cs.equality[Fixed].Set(uint(col.Index))
}

// ConstantsColumn returns the column registered via EnableConstant.
func (cs *ConstraintSystem) ConstantsColumn() (Column, bool) {
	return cs.constants, cs.hasConstants
}

// QueryAdvice builds an expression reading an advice column at a rotation.
func (cs *ConstraintSystem) QueryAdvice(col Column, rot Rotation) Expression {
	if col.Kind != Advice {
		panic(configErrorf("QueryAdvice on %v", col))
	}
	cs.checkColumn(col)
	return &CellQuery{Column: col, Rotation: rot}
}

// QueryFixed builds an expression reading a fixed column at a rotation.
func (cs *ConstraintSystem) QueryFixed(col Column, rot Rotation) Expression {
	if col.Kind != Fixed {
		panic(configErrorf("QueryFixed on %v", col))
	}
	cs.checkColumn(col)
	return &CellQuery{Column: col, Rotation: rot}
}

// QueryInstance builds an expression reading an instance column at a
// rotation.
func (cs *ConstraintSystem) QueryInstance(col Column, rot Rotation) Expression {
	if col.Kind != Instance {
		panic(configErrorf("QueryInstance on %v", col))
	}
	cs.checkColumn(col)
	return &CellQuery{Column: col, Rotation: rot}
}

// QuerySelector builds the 0/1 expression of a selector.
func (cs *ConstraintSystem) QuerySelector(sel Selector) Expression {
	cs.checkSelector(sel)
	return &SelectorQuery{Selector: sel}
}

// CreateGate registers a gate. Callers multiply every constraint by the
// selector query themselves; see Gate.
func (cs *ConstraintSystem) CreateGate(name string, sel Selector, constraints ...Constraint) {
	cs.mutate()
	cs.checkSelector(sel)
	if len(constraints) == 0 {
		panic(configErrorf("gate %q has no constraints", name))
	}
	for _, c := range constraints {
		cs.validateExpr("gate "+name, c.Expr)
	}
	cs.gates = append(cs.gates, Gate{Name: name, Selector: sel, Constraints: constraints})
}

// AddLookup registers a table-membership constraint checked at rows where
// the selector is enabled. The table must be a fixed column.
func (cs *ConstraintSystem) AddLookup(name string, sel Selector, input Expression, table Column) {
	cs.mutate()
	cs.checkSelector(sel)
	cs.checkColumn(table)
	if table.Kind != Fixed {
		panic(configErrorf("lookup %q: table must be a fixed column, got %v", name, table))
	}
	cs.validateExpr("lookup "+name, input)
	cs.lookups = append(cs.lookups, Lookup{Name: name, Selector: sel, Input: input, Table: table})
}

// validateExpr checks every query in the tree against declared handles, in
// case the caller built nodes directly instead of going through Query*.
func (cs *ConstraintSystem) validateExpr(owner string, e Expression) {
	if e == nil {
		panic(configErrorf("%s: nil expression", owner))
	}
	walk(e, func(n Expression) {
		switch t := n.(type) {
		case *CellQuery:
			cs.checkColumn(t.Column)
		case *SelectorQuery:
			cs.checkSelector(t.Selector)
		}
	})
}

// Finalize freezes the system, computes the maximum constraint degree and
// logs the shape. Any later mutation panics.
func (cs *ConstraintSystem) Finalize() {
	cs.mutate()
	cs.finalized = true
	for _, g := range cs.gates {
		for _, c := range g.Constraints {
			if d := c.Expr.Degree(); d > cs.maxDegree {
				cs.maxDegree = d
			}
		}
	}
	for _, l := range cs.lookups {
		if d := l.Input.Degree(); d > cs.maxDegree {
			cs.maxDegree = d
		}
	}
	log := logger.Logger()
	log.Info().
		Int("nbAdvice", cs.nbAdvice).
		Int("nbFixed", cs.nbFixed).
		Int("nbInstance", cs.nbInstance).
		Int("nbSelectors", cs.nbSelector).
		Int("nbGates", len(cs.gates)).
		Int("nbLookups", len(cs.lookups)).
		Int("maxDegree", cs.maxDegree).
		Msg("constraint system finalized")
}

// Finalized reports whether Finalize has run.
func (cs *ConstraintSystem) Finalized() bool { return cs.finalized }

func (cs *ConstraintSystem) NbAdvice() int    { return cs.nbAdvice }
func (cs *ConstraintSystem) NbFixed() int     { return cs.nbFixed }
func (cs *ConstraintSystem) NbInstance() int  { return cs.nbInstance }
func (cs *ConstraintSystem) NbSelectors() int { return cs.nbSelector }

// MaxDegree is the largest constraint degree, available after Finalize.
func (cs *ConstraintSystem) MaxDegree() int { return cs.maxDegree }

// Gates returns the registered gates. Callers must not mutate the result.
func (cs *ConstraintSystem) Gates() []Gate { return cs.gates }

// Lookups returns the registered lookup arguments. Callers must not mutate
// the result.
func (cs *ConstraintSystem) Lookups() []Lookup { return cs.lookups }
