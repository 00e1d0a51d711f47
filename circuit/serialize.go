package circuit

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
	"github.com/merdan-9/halo2-examples/utils"
)

const witnessSerializeMagic uint64 = 3626604230490605891

func appendCell(o *utils.OutputBuf, c plonk.Cell) {
	o.AppendUint8(uint8(c.Column.Kind))
	o.AppendUint64(uint64(c.Column.Index))
	o.AppendUint64(uint64(c.Row))
}

func readCell(in *utils.InputBuf) plonk.Cell {
	kind := plonk.ColumnKind(in.ReadUint8())
	idx := int(in.ReadUint64())
	row := int(in.ReadUint64())
	return plonk.Cell{Column: plonk.Column{Index: idx, Kind: kind}, Row: row}
}

func setRows(b interface{ Test(uint) bool }, rows int) []int {
	out := []int{}
	for i := 0; i < rows; i++ {
		if b.Test(uint(i)) {
			out = append(out, i)
		}
	}
	return out
}

// SerializeWitness encodes the populated grid, the public-input vectors, the
// selector rows and the recorded copy constraints into a byte array for
// storage or transmission.
func (a *Assembly) SerializeWitness() []byte {
	o := utils.OutputBuf{}
	o.AppendUint64(witnessSerializeMagic)
	o.AppendUint64(field.GetFieldId(a.fd))
	o.AppendUint64(uint64(a.rows))
	for i := range a.advice {
		rows := setRows(a.adviceSet[i], a.rows)
		o.AppendIntSlice(rows)
		for _, r := range rows {
			o.AppendFieldElement(a.fd, a.advice[i][r])
		}
	}
	for i := range a.fixed {
		rows := setRows(a.fixedSet[i], a.rows)
		o.AppendIntSlice(rows)
		for _, r := range rows {
			o.AppendFieldElement(a.fd, a.fixed[i][r])
		}
	}
	for _, vec := range a.instances {
		o.AppendUint64(uint64(len(vec)))
		for _, v := range vec {
			o.AppendFieldElement(a.fd, v)
		}
	}
	for _, sel := range a.selectors {
		o.AppendIntSlice(setRows(sel, a.rows))
	}
	pairs := a.copies.copyPairs()
	o.AppendUint64(uint64(len(pairs)))
	for _, p := range pairs {
		appendCell(&o, p.A)
		appendCell(&o, p.B)
	}
	return o.Bytes()
}

// DeserializeWitness rebuilds an assembly for cs from a SerializeWitness
// blob.
func DeserializeWitness(cs *plonk.ConstraintSystem, data []byte) (a *Assembly, err error) {
	// the input buffer panics on truncated data
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed witness blob: %v", r)
		}
	}()

	in := utils.NewInputBuf(data)
	if m := in.ReadUint64(); m != witnessSerializeMagic {
		return nil, fmt.Errorf("malformed witness blob: bad magic %d", m)
	}
	if id := in.ReadUint64(); id != field.GetFieldId(cs.Field()) {
		return nil, fmt.Errorf("witness field id %d does not match the constraint system", id)
	}
	rows := int(in.ReadUint64())
	k := bits.TrailingZeros(uint(rows))
	if rows <= 0 || rows != 1<<k {
		return nil, fmt.Errorf("malformed witness blob: row count %d is not a power of two", rows)
	}

	fd := cs.Field()
	type colData struct {
		rows []int
		vals []constraint.Element
	}
	readCol := func() colData {
		idx := in.ReadIntSlice()
		vals := make([]constraint.Element, len(idx))
		for i := range idx {
			vals[i] = in.ReadFieldElement(fd)
		}
		return colData{rows: idx, vals: vals}
	}
	advice := make([]colData, cs.NbAdvice())
	for i := range advice {
		advice[i] = readCol()
	}
	fixed := make([]colData, cs.NbFixed())
	for i := range fixed {
		fixed[i] = readCol()
	}
	instances := make([][]constraint.Element, cs.NbInstance())
	for i := range instances {
		n := in.ReadUint64()
		instances[i] = make([]constraint.Element, n)
		for j := range instances[i] {
			instances[i][j] = in.ReadFieldElement(fd)
		}
	}

	a, err = NewAssembly(cs, k, instances)
	if err != nil {
		return nil, err
	}
	fill := func(col plonk.Column, d colData) error {
		for i, r := range d.rows {
			if err := a.assign(col, r, d.vals[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for i, d := range advice {
		if err := fill(plonk.Column{Index: i, Kind: plonk.Advice}, d); err != nil {
			return nil, err
		}
	}
	for i, d := range fixed {
		if err := fill(plonk.Column{Index: i, Kind: plonk.Fixed}, d); err != nil {
			return nil, err
		}
	}
	for i := 0; i < cs.NbSelectors(); i++ {
		for _, r := range in.ReadIntSlice() {
			if err := a.enableSelector(plonk.Selector{Index: i}, r); err != nil {
				return nil, err
			}
		}
	}
	nbPairs := in.ReadUint64()
	for i := uint64(0); i < nbPairs; i++ {
		pa := readCell(in)
		pb := readCell(in)
		if err := a.copies.record(pa, pb); err != nil {
			return nil, err
		}
	}
	if err := in.ExpectEnd(); err != nil {
		return nil, fmt.Errorf("malformed witness blob: %w", err)
	}
	return a, nil
}
