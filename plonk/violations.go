package plonk

import (
	"fmt"
	"sort"
)

// Violation is one failed check against a populated grid. Violations are
// diagnostics rather than errors: the checker accumulates every one instead
// of stopping at the first.
type Violation interface {
	fmt.Stringer
	// order returns the (row, kind, name) sort key for deterministic
	// reports.
	order() (int, int, string)
}

// ConstraintViolation reports a gate constraint that does not vanish at a
// row where the gate's selector is enabled.
type ConstraintViolation struct {
	Gate       string
	Constraint string
	Selector   Selector
	Row        int
	// Value is the non-zero result, rendered with the checking field.
	Value string
}

func (v *ConstraintViolation) String() string {
	return fmt.Sprintf("constraint %q of gate %q (%v) evaluates to %s at row %d",
		v.Constraint, v.Gate, v.Selector, v.Value, v.Row)
}

func (v *ConstraintViolation) order() (int, int, string) {
	return v.Row, 0, v.Gate + "/" + v.Constraint
}

// LookupViolation reports a lookup input absent from its table at a row
// where the lookup's selector is enabled.
type LookupViolation struct {
	Lookup string
	Table  Column
	Row    int
	Value  string
}

func (v *LookupViolation) String() string {
	return fmt.Sprintf("lookup %q: input %s at row %d not present in %v",
		v.Lookup, v.Value, v.Row, v.Table)
}

func (v *LookupViolation) order() (int, int, string) {
	return v.Row, 1, v.Lookup
}

// UnassignedCellViolation reports a gate or lookup querying a cell that was
// never assigned.
type UnassignedCellViolation struct {
	// Context names the constraint that performed the query, e.g.
	// `gate "mul"`.
	Context string
	Cell    Cell
	// Row is the evaluation row, before rotation.
	Row int
}

func (v *UnassignedCellViolation) String() string {
	return fmt.Sprintf("%s queries unassigned cell %v at row %d", v.Context, v.Cell, v.Row)
}

func (v *UnassignedCellViolation) order() (int, int, string) {
	return v.Row, 2, v.Context + "/" + v.Cell.String()
}

// CopyConstraintViolation reports two cells of one equality class holding
// different values. The checker emits at most one per class.
type CopyConstraintViolation struct {
	A, B           Cell
	ValueA, ValueB string
}

func (v *CopyConstraintViolation) String() string {
	return fmt.Sprintf("copy constraint not satisfied: %v = %s but %v = %s",
		v.A, v.ValueA, v.B, v.ValueB)
}

func (v *CopyConstraintViolation) order() (int, int, string) {
	return v.A.Row, 3, v.A.String() + "/" + v.B.String()
}

// SortViolations orders a report by row, then violation kind, then name, so
// that checker output does not depend on evaluation order.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		ri, ki, ni := vs[i].order()
		rj, kj, nj := vs[j].order()
		if ri != rj {
			return ri < rj
		}
		if ki != kj {
			return ki < kj
		}
		return ni < nj
	})
}
