package halo2

import (
	"fmt"
	"runtime"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
	"github.com/merdan-9/halo2-examples/utils"
)

// Run compiles the circuit, synthesizes a witness for the given public
// inputs and checks it, the development loop equivalent of a mock prover.
// The returned violations describe every way the witness fails the circuit;
// an empty slice means it is satisfied. The error reports configuration or
// assignment problems, which are bugs in the circuit description rather than
// witness failures.
func Run(fd field.Field, k int, circ circuit.Circuit, instances [][]constraint.Element, opts ...CompileOption) ([]plonk.Violation, error) {
	cc, err := Compile(fd, k, circ, opts...)
	if err != nil {
		return nil, err
	}
	asm, err := cc.Synthesize(instances)
	if err != nil {
		return nil, err
	}
	return cc.Check(asm), nil
}

const compiledSerializeMagic uint64 = 7521624018605076307

// Serialize encodes the finalized constraint system and the grid size for a
// proving backend. The circuit's synthesizer is code and does not travel: a
// deserialized compiled circuit can check witnesses but not produce them.
func (cc *CompiledCircuit) Serialize() []byte {
	o := utils.OutputBuf{}
	o.AppendUint64(compiledSerializeMagic)
	o.AppendUint64(uint64(cc.k))
	o.AppendBytes(cc.cs.Serialize())
	return o.Bytes()
}

// DeserializeCompiledCircuit rebuilds a compiled circuit from a Serialize
// blob.
func DeserializeCompiledCircuit(data []byte) (cc *CompiledCircuit, err error) {
	// the input buffer panics on truncated data
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed compiled circuit blob: %v", r)
		}
	}()

	in := utils.NewInputBuf(data)
	if m := in.ReadUint64(); m != compiledSerializeMagic {
		return nil, fmt.Errorf("malformed compiled circuit blob: bad magic %d", m)
	}
	k := int(in.ReadUint64())
	cs, err := plonk.DeserializeConstraintSystem(in.ReadBytes())
	if err != nil {
		return nil, err
	}
	if err := in.ExpectEnd(); err != nil {
		return nil, fmt.Errorf("malformed compiled circuit blob: %w", err)
	}
	if k <= 0 || k > 30 {
		return nil, fmt.Errorf("%w: log2 row count k=%d out of range", plonk.ErrConfiguration, k)
	}
	return &CompiledCircuit{
		fd:        cs.Field(),
		k:         k,
		cs:        cs,
		nbWorkers: runtime.NumCPU(),
	}, nil
}
