package plonk

import (
	"fmt"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/utils"
)

const systemSerializeMagic uint64 = 2643816889381460821

// expression node tags
const (
	tagConstant uint8 = iota
	tagCellQuery
	tagSelectorQuery
	tagSum
	tagProduct
	tagNegated
	tagScaled
)

func appendColumn(o *utils.OutputBuf, c Column) {
	o.AppendUint8(uint8(c.Kind))
	o.AppendUint64(uint64(c.Index))
}

func readColumn(in *utils.InputBuf) Column {
	kind := ColumnKind(in.ReadUint8())
	idx := int(in.ReadUint64())
	return Column{Index: idx, Kind: kind}
}

func appendExpr(o *utils.OutputBuf, fd field.Field, e Expression) {
	switch t := e.(type) {
	case *Constant:
		o.AppendUint8(tagConstant)
		o.AppendFieldElement(fd, t.Value)
	case *CellQuery:
		o.AppendUint8(tagCellQuery)
		appendColumn(o, t.Column)
		o.AppendUint64(uint64(int64(t.Rotation)))
	case *SelectorQuery:
		o.AppendUint8(tagSelectorQuery)
		o.AppendUint64(uint64(t.Selector.Index))
	case *Sum:
		o.AppendUint8(tagSum)
		o.AppendUint64(uint64(len(t.Args)))
		for _, a := range t.Args {
			appendExpr(o, fd, a)
		}
	case *Product:
		o.AppendUint8(tagProduct)
		o.AppendUint64(uint64(len(t.Args)))
		for _, a := range t.Args {
			appendExpr(o, fd, a)
		}
	case *Negated:
		o.AppendUint8(tagNegated)
		appendExpr(o, fd, t.Inner)
	case *Scaled:
		o.AppendUint8(tagScaled)
		o.AppendFieldElement(fd, t.Factor)
		appendExpr(o, fd, t.Inner)
	default:
		panic(fmt.Sprintf("unexpected expression node %T", e))
	}
}

func readExpr(in *utils.InputBuf, fd field.Field) Expression {
	switch tag := in.ReadUint8(); tag {
	case tagConstant:
		return &Constant{Value: in.ReadFieldElement(fd)}
	case tagCellQuery:
		col := readColumn(in)
		rot := Rotation(int64(in.ReadUint64()))
		return &CellQuery{Column: col, Rotation: rot}
	case tagSelectorQuery:
		return &SelectorQuery{Selector: Selector{Index: int(in.ReadUint64())}}
	case tagSum:
		args := make([]Expression, in.ReadUint64())
		for i := range args {
			args[i] = readExpr(in, fd)
		}
		return &Sum{Args: args}
	case tagProduct:
		args := make([]Expression, in.ReadUint64())
		for i := range args {
			args[i] = readExpr(in, fd)
		}
		return &Product{Args: args}
	case tagNegated:
		return &Negated{Inner: readExpr(in, fd)}
	case tagScaled:
		factor := in.ReadFieldElement(fd)
		return &Scaled{Inner: readExpr(in, fd), Factor: factor}
	default:
		panic(fmt.Sprintf("unexpected expression tag %d", tag))
	}
}

func equalitySlice(cs *ConstraintSystem, kind ColumnKind, nb int) []int {
	out := []int{}
	for i := 0; i < nb; i++ {
		if cs.equality[kind].Test(uint(i)) {
			out = append(out, i)
		}
	}
	return out
}

// Serialize encodes a finalized system into a byte array: column and
// selector counts, equality flags, the constants column, and every gate and
// lookup with their expression trees.
func (cs *ConstraintSystem) Serialize() []byte {
	if !cs.finalized {
		panic(configErrorf("cannot serialize a constraint system before Finalize"))
	}
	o := utils.OutputBuf{}
	o.AppendUint64(systemSerializeMagic)
	o.AppendUint64(field.GetFieldId(cs.fd))
	o.AppendUint64(uint64(cs.nbAdvice))
	o.AppendUint64(uint64(cs.nbFixed))
	o.AppendUint64(uint64(cs.nbInstance))
	o.AppendUint64(uint64(cs.nbSelector))
	o.AppendIntSlice(equalitySlice(cs, Advice, cs.nbAdvice))
	o.AppendIntSlice(equalitySlice(cs, Fixed, cs.nbFixed))
	o.AppendIntSlice(equalitySlice(cs, Instance, cs.nbInstance))
	if cs.hasConstants {
		o.AppendUint8(1)
		o.AppendUint64(uint64(cs.constants.Index))
	} else {
		o.AppendUint8(0)
	}
	o.AppendUint64(uint64(len(cs.gates)))
	for _, g := range cs.gates {
		o.AppendBytes([]byte(g.Name))
		o.AppendUint64(uint64(g.Selector.Index))
		o.AppendUint64(uint64(len(g.Constraints)))
		for _, c := range g.Constraints {
			o.AppendBytes([]byte(c.Name))
			appendExpr(&o, cs.fd, c.Expr)
		}
	}
	o.AppendUint64(uint64(len(cs.lookups)))
	for _, l := range cs.lookups {
		o.AppendBytes([]byte(l.Name))
		o.AppendUint64(uint64(l.Selector.Index))
		appendExpr(&o, cs.fd, l.Input)
		appendColumn(&o, l.Table)
	}
	return o.Bytes()
}

// DeserializeConstraintSystem rebuilds a finalized system from a Serialize
// blob.
func DeserializeConstraintSystem(data []byte) (cs *ConstraintSystem, err error) {
	// the input buffer panics on truncated data, and the re-registration
	// below panics on handles that do not resolve
	defer func() {
		if r := recover(); r != nil {
			cs, err = nil, fmt.Errorf("malformed constraint system blob: %v", r)
		}
	}()

	in := utils.NewInputBuf(data)
	if m := in.ReadUint64(); m != systemSerializeMagic {
		return nil, fmt.Errorf("malformed constraint system blob: bad magic %d", m)
	}
	fd := field.GetFieldById(in.ReadUint64())
	cs = NewConstraintSystem(fd)
	nbAdvice := int(in.ReadUint64())
	nbFixed := int(in.ReadUint64())
	nbInstance := int(in.ReadUint64())
	nbSelector := int(in.ReadUint64())
	for i := 0; i < nbAdvice; i++ {
		cs.AdviceColumn()
	}
	for i := 0; i < nbFixed; i++ {
		cs.FixedColumn()
	}
	for i := 0; i < nbInstance; i++ {
		cs.InstanceColumn()
	}
	for i := 0; i < nbSelector; i++ {
		cs.NewSelector()
	}
	for _, kind := range []ColumnKind{Advice, Fixed, Instance} {
		for _, idx := range in.ReadIntSlice() {
			cs.EnableEquality(Column{Index: idx, Kind: kind})
		}
	}
	if in.ReadUint8() == 1 {
		// EnableConstant would re-set the equality bit, which is harmless
		cs.EnableConstant(Column{Index: int(in.ReadUint64()), Kind: Fixed})
	}
	nbGates := in.ReadUint64()
	for i := uint64(0); i < nbGates; i++ {
		name := string(in.ReadBytes())
		sel := Selector{Index: int(in.ReadUint64())}
		constraints := make([]Constraint, in.ReadUint64())
		for j := range constraints {
			constraints[j].Name = string(in.ReadBytes())
			constraints[j].Expr = readExpr(in, fd)
		}
		cs.CreateGate(name, sel, constraints...)
	}
	nbLookups := in.ReadUint64()
	for i := uint64(0); i < nbLookups; i++ {
		name := string(in.ReadBytes())
		sel := Selector{Index: int(in.ReadUint64())}
		input := readExpr(in, fd)
		table := readColumn(in)
		cs.AddLookup(name, sel, input, table)
	}
	if err := in.ExpectEnd(); err != nil {
		return nil, fmt.Errorf("malformed constraint system blob: %w", err)
	}
	cs.Finalize()
	return cs, nil
}
