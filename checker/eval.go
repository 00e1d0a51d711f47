// Package checker validates a populated grid against its constraint system.
// It mirrors what a proving backend's soundness check enforces, so a circuit
// can be exercised without running a prover.
package checker

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark/constraint"
	"golang.org/x/sync/errgroup"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/plonk"
)

// Check evaluates every gate, lookup and copy constraint against the grid and
// returns all violations, sorted by row, kind and name. An empty result means
// the witness satisfies the circuit. Checking never aborts early: a failed
// row does not stop the remaining rows from being evaluated.
func Check(asm *circuit.Assembly) []plonk.Violation {
	return CheckParallel(asm, runtime.NumCPU())
}

// CheckParallel is Check with an explicit worker count. Rows are independent
// given a populated grid, so they are split into one contiguous chunk per
// worker.
func CheckParallel(asm *circuit.Assembly, nbWorkers int) []plonk.Violation {
	cs := asm.System()
	rows := asm.Rows()
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	if nbWorkers > rows {
		nbWorkers = rows
	}

	tables := buildTableIndexes(asm)

	// one violation slice per worker, merged in chunk order so the result
	// does not depend on scheduling
	perWorker := make([][]plonk.Violation, nbWorkers)
	chunk := (rows + nbWorkers - 1) / nbWorkers
	var g errgroup.Group
	for w := 0; w < nbWorkers; w++ {
		w := w
		start := w * chunk
		end := start + chunk
		if end > rows {
			end = rows
		}
		g.Go(func() error {
			ctx := &plonk.EvalContext{Field: asm.Field(), Rows: rows, Src: asm}
			for row := start; row < end; row++ {
				perWorker[w] = append(perWorker[w], checkRow(cs, ctx, tables, row)...)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never fail

	var violations []plonk.Violation
	for _, vs := range perWorker {
		violations = append(violations, vs...)
	}
	violations = append(violations, checkCopies(asm)...)
	plonk.SortViolations(violations)
	return violations
}

// checkRow evaluates every enabled gate constraint and lookup at one row.
func checkRow(cs *plonk.ConstraintSystem, ctx *plonk.EvalContext, tables map[plonk.Column]map[constraint.Element]struct{}, row int) []plonk.Violation {
	var out []plonk.Violation
	zero := constraint.Element{}
	for _, gate := range cs.Gates() {
		if !ctx.Src.QuerySelector(gate.Selector, row) {
			continue
		}
		for _, c := range gate.Constraints {
			v, err := c.Expr.Eval(ctx, row)
			if err != nil {
				out = append(out, unassigned(fmt.Sprintf("constraint %q of gate %q", c.Name, gate.Name), err, row))
				continue
			}
			if v != zero {
				out = append(out, &plonk.ConstraintViolation{
					Gate:       gate.Name,
					Constraint: c.Name,
					Selector:   gate.Selector,
					Row:        row,
					Value:      ctx.Field.String(v),
				})
			}
		}
	}
	for _, lk := range cs.Lookups() {
		if !ctx.Src.QuerySelector(lk.Selector, row) {
			continue
		}
		v, err := lk.Input.Eval(ctx, row)
		if err != nil {
			out = append(out, unassigned(fmt.Sprintf("lookup %q", lk.Name), err, row))
			continue
		}
		if _, ok := tables[lk.Table][v]; !ok {
			out = append(out, &plonk.LookupViolation{
				Lookup: lk.Name,
				Table:  lk.Table,
				Row:    row,
				Value:  ctx.Field.String(v),
			})
		}
	}
	return out
}

// buildTableIndexes builds one presence index per table column referenced by
// a lookup, so membership tests do not rescan the column at every enabled
// row. Unassigned table rows contribute nothing: a lookup against a table
// that was never loaded fails at every enabled row.
func buildTableIndexes(asm *circuit.Assembly) map[plonk.Column]map[constraint.Element]struct{} {
	tables := make(map[plonk.Column]map[constraint.Element]struct{})
	for _, lk := range asm.System().Lookups() {
		if _, ok := tables[lk.Table]; ok {
			continue
		}
		idx := make(map[constraint.Element]struct{})
		for row := 0; row < asm.Rows(); row++ {
			if v, ok := asm.QueryCell(lk.Table, row); ok {
				idx[v] = struct{}{}
			}
		}
		tables[lk.Table] = idx
	}
	return tables
}

// checkCopies verifies that all assigned members of every copy-constraint
// equivalence class agree, emitting at most one violation per class. Members
// without a value are skipped: a class may legitimately contain instance rows
// beyond the provided public inputs.
func checkCopies(asm *circuit.Assembly) []plonk.Violation {
	var out []plonk.Violation
	fd := asm.Field()
	for _, class := range asm.CopyClasses() {
		var ref plonk.Cell
		var refVal constraint.Element
		seen := false
		for _, cell := range class {
			v, ok := asm.QueryCell(cell.Column, cell.Row)
			if !ok {
				continue
			}
			if !seen {
				ref, refVal, seen = cell, v, true
				continue
			}
			if v != refVal {
				out = append(out, &plonk.CopyConstraintViolation{
					A:      ref,
					B:      cell,
					ValueA: fd.String(refVal),
					ValueB: fd.String(v),
				})
				break
			}
		}
	}
	return out
}

func unassigned(context string, err error, row int) plonk.Violation {
	var ue *plonk.UnassignedError
	if !errors.As(err, &ue) {
		// Eval only fails on unassigned cells
		panic(fmt.Sprintf("unexpected evaluation error: %v", err))
	}
	return &plonk.UnassignedCellViolation{Context: context, Cell: ue.Cell, Row: row}
}
