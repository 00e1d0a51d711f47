package circuit

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/logger"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// allocator is the serialized part of the layouter: per-column row cursors,
// the constants cache, and the lock regions queue on to be placed.
type allocator struct {
	mu        sync.Mutex
	colHeight map[plonk.Column]int
	selHeight map[plonk.Selector]int
	constants map[constraint.Element]plonk.Cell
	tables    map[plonk.Column]bool
}

// Layouter places regions onto the grid and writes their content into the
// assembly. Placement packs per column: a region starts at the lowest row
// compatible with every column and selector it touches, so regions touching
// disjoint columns may share rows.
//
// AssignRegion may be called from several goroutines; region closures run
// unlocked and only placement plus flushing is serialized. A region that
// copies from another region's cells must start after that region's
// AssignRegion has returned.
type Layouter struct {
	cs     *plonk.ConstraintSystem
	asm    *Assembly
	alloc  *allocator
	prefix string
}

// NewLayouter returns a layouter writing into asm.
func NewLayouter(cs *plonk.ConstraintSystem, asm *Assembly) *Layouter {
	return &Layouter{
		cs:  cs,
		asm: asm,
		alloc: &allocator{
			colHeight: make(map[plonk.Column]int),
			selHeight: make(map[plonk.Selector]int),
			constants: make(map[constraint.Element]plonk.Cell),
			tables:    make(map[plonk.Column]bool),
		},
	}
}

// Field returns the field witness values live in.
func (l *Layouter) Field() field.Field { return l.asm.fd }

// Namespace returns a view of the layouter whose region names carry the
// given prefix. Purely diagnostic; both views share all state.
func (l *Layouter) Namespace(name string) *Layouter {
	child := *l
	child.prefix = child.path(name)
	return &child
}

func (l *Layouter) path(name string) string {
	if l.prefix == "" {
		return name
	}
	return l.prefix + "/" + name
}

// AssignRegion runs fn with a fresh region, then places the region and
// flushes its buffered content into the grid.
func (l *Layouter) AssignRegion(name string, fn func(*Region) error) error {
	r := &Region{layouter: l, name: l.path(name)}
	if err := fn(r); err != nil {
		return fmt.Errorf("region %q: %w", r.name, err)
	}
	if err := l.flush(r); err != nil {
		return fmt.Errorf("region %q: %w", r.name, err)
	}
	return nil
}

// flush places the region and applies its buffered writes, selector enables
// and copy constraints.
func (l *Layouter) flush(r *Region) error {
	l.alloc.mu.Lock()
	defer l.alloc.mu.Unlock()

	start := 0
	for _, w := range r.writes {
		if h := l.alloc.colHeight[w.column]; h > start {
			start = h
		}
	}
	for _, s := range r.selectors {
		if h := l.alloc.selHeight[s.sel]; h > start {
			start = h
		}
	}
	if start+r.height > l.asm.rows {
		return assignErrorf("rows %d..%d do not fit the %d-row grid",
			start, start+r.height-1, l.asm.rows)
	}
	for _, w := range r.writes {
		if end := start + r.height; end > l.alloc.colHeight[w.column] {
			l.alloc.colHeight[w.column] = end
		}
	}
	for _, s := range r.selectors {
		if end := start + r.height; end > l.alloc.selHeight[s.sel] {
			l.alloc.selHeight[s.sel] = end
		}
	}

	for i := range r.writes {
		w := &r.writes[i]
		cell := plonk.Cell{Column: w.column, Row: start + w.offset}
		if err := l.asm.assign(w.column, cell.Row, w.value); err != nil {
			return fmt.Errorf("%q: %w", w.name, err)
		}
		w.out.cell = cell
		w.out.resolved = true
		if w.copyPeer != nil {
			if err := l.asm.copies.record(cell, *w.copyPeer); err != nil {
				return fmt.Errorf("%q: %w", w.name, err)
			}
		}
		if w.constant {
			cc, err := l.constantCell(w.value)
			if err != nil {
				return fmt.Errorf("%q: %w", w.name, err)
			}
			if err := l.asm.copies.record(cell, cc); err != nil {
				return fmt.Errorf("%q: %w", w.name, err)
			}
		}
	}
	for _, s := range r.selectors {
		if err := l.asm.enableSelector(s.sel, start+s.offset); err != nil {
			return err
		}
	}

	log := logger.Logger()
	log.Debug().Str("region", r.name).Int("start", start).Int("rows", r.height).Msg("region placed")
	return nil
}

// constantCell returns the fixed cell holding the constant, assigning it on
// first use. Caller holds the allocator lock.
func (l *Layouter) constantCell(v constraint.Element) (plonk.Cell, error) {
	if c, ok := l.alloc.constants[v]; ok {
		return c, nil
	}
	col, ok := l.cs.ConstantsColumn()
	if !ok {
		return plonk.Cell{}, fmt.Errorf("%w: no constants column registered", plonk.ErrConfiguration)
	}
	row := l.alloc.colHeight[col]
	if row >= l.asm.rows {
		return plonk.Cell{}, assignErrorf("constants column %v is full", col)
	}
	l.alloc.colHeight[col] = row + 1
	if err := l.asm.assign(col, row, v); err != nil {
		return plonk.Cell{}, err
	}
	cell := plonk.Cell{Column: col, Row: row}
	l.alloc.constants[v] = cell
	return cell, nil
}

// MarkTableLoaded records that a lookup table column has been populated.
// Loading the same column twice within one synthesis is a configuration
// error; a fresh layouter starts with no tables loaded.
func (l *Layouter) MarkTableLoaded(col plonk.Column) error {
	l.alloc.mu.Lock()
	defer l.alloc.mu.Unlock()
	if l.alloc.tables[col] {
		return fmt.Errorf("%w: table %v is already loaded", plonk.ErrConfiguration, col)
	}
	l.alloc.tables[col] = true
	return nil
}

// ConstrainEqual records a copy constraint between two already-placed cells.
// Both columns must have equality enabled; the values are compared at check
// time, not here.
func (l *Layouter) ConstrainEqual(a, b plonk.Cell) error {
	return l.asm.copies.record(a, b)
}

// ConstrainInstance binds an already-assigned cell to a public-input cell.
// No value is written; the equality is recorded and enforced at check time.
func (l *Layouter) ConstrainInstance(cell plonk.Cell, col plonk.Column, row int) error {
	if col.Kind != plonk.Instance {
		return assignErrorf("ConstrainInstance target %v is not an instance column", col)
	}
	if !l.cs.HasColumn(col) {
		return assignErrorf("undeclared column %v", col)
	}
	if _, err := l.asm.instanceValue(col, row); err != nil {
		return err
	}
	return l.asm.copies.record(cell, plonk.Cell{Column: col, Row: row})
}
