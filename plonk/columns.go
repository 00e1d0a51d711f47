package plonk

import "fmt"

// ColumnKind distinguishes the three kinds of grid columns.
type ColumnKind uint8

const (
	// Advice columns hold private witness values, filled in per instance.
	Advice ColumnKind = iota
	// Fixed columns hold values baked into the circuit shape.
	Fixed
	// Instance columns hold public inputs.
	Instance
)

func (k ColumnKind) String() string {
	switch k {
	case Advice:
		return "advice"
	case Fixed:
		return "fixed"
	case Instance:
		return "instance"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Column is a typed handle to one grid column. Handles are issued by the
// constraint system that declared them and are not interchangeable across
// systems.
type Column struct {
	Index int
	Kind  ColumnKind
}

func (c Column) String() string {
	return fmt.Sprintf("%v[%d]", c.Kind, c.Index)
}

// Cell is an absolute grid address.
type Cell struct {
	Column Column
	Row    int
}

func (c Cell) String() string {
	return fmt.Sprintf("%v@%d", c.Column, c.Row)
}

// Less orders cells by column kind, column index, then row. Copy classes and
// violation reports rely on it for deterministic output.
func (c Cell) Less(o Cell) bool {
	if c.Column.Kind != o.Column.Kind {
		return c.Column.Kind < o.Column.Kind
	}
	if c.Column.Index != o.Column.Index {
		return c.Column.Index < o.Column.Index
	}
	return c.Row < o.Row
}

// Selector is a handle to a virtual boolean column that switches gates on at
// chosen rows. Selector values are binary by construction: the layouter only
// ever writes 1.
type Selector struct {
	Index int
}

func (s Selector) String() string {
	return fmt.Sprintf("selector[%d]", s.Index)
}

// Rotation addresses a row relative to the one a gate is evaluated at.
// Resolution wraps around the grid.
type Rotation int

const (
	RotationPrev Rotation = -1
	RotationCur  Rotation = 0
	RotationNext Rotation = 1
)
