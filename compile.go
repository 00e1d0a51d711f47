// Package halo2 ties the front-end together: it configures a circuit into a
// finalized constraint system, synthesizes witnesses for concrete instances
// and checks them. The boundary artifacts it produces (finalized system,
// witness grid, public inputs) are what a proving backend consumes.
package halo2

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/checker"
	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

type compileConfig struct {
	nbWorkers int
}

// WithNbWorkers sets the number of goroutines the compiled circuit's checker
// splits rows over. Defaults to runtime.NumCPU().
func WithNbWorkers(n int) CompileOption {
	return func(c *compileConfig) {
		c.nbWorkers = n
	}
}

// CompiledCircuit is a circuit shape frozen for a fixed grid size: the
// finalized constraint system plus everything needed to synthesize and check
// witnesses against it.
type CompiledCircuit struct {
	fd   field.Field
	k    int
	circ circuit.Circuit
	cs   *plonk.ConstraintSystem

	nbWorkers int
}

// Compile runs the circuit's Configure against a fresh constraint system over
// fd and finalizes it for a 2^k row grid. Configuration mistakes surface as
// errors wrapping plonk.ErrConfiguration.
func Compile(fd field.Field, k int, circ circuit.Circuit, opts ...CompileOption) (cc *CompiledCircuit, err error) {
	conf := compileConfig{nbWorkers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&conf)
	}
	if k <= 0 || k > 30 {
		return nil, fmt.Errorf("%w: log2 row count k=%d out of range", plonk.ErrConfiguration, k)
	}

	// the constraint system panics on malformed configuration; recover it
	// into a returned error at this boundary
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, plonk.ErrConfiguration) {
				cc, err = nil, fmt.Errorf("compiling circuit: %w", e)
				return
			}
			panic(r)
		}
	}()

	cs := plonk.NewConstraintSystem(fd)
	circ.Configure(cs)
	cs.Finalize()
	return &CompiledCircuit{
		fd:        fd,
		k:         k,
		circ:      circ,
		cs:        cs,
		nbWorkers: conf.nbWorkers,
	}, nil
}

// Field returns the field the circuit was compiled over.
func (cc *CompiledCircuit) Field() field.Field { return cc.fd }

// K returns the log2 row count.
func (cc *CompiledCircuit) K() int { return cc.k }

// ConstraintSystem returns the finalized system.
func (cc *CompiledCircuit) ConstraintSystem() *plonk.ConstraintSystem { return cc.cs }

// Synthesize populates a fresh grid for one instance. instances provides one
// public-input vector per instance column.
func (cc *CompiledCircuit) Synthesize(instances [][]constraint.Element) (*circuit.Assembly, error) {
	if cc.circ == nil {
		return nil, fmt.Errorf("%w: circuit was deserialized without a synthesizer", plonk.ErrConfiguration)
	}
	asm, err := circuit.NewAssembly(cc.cs, cc.k, instances)
	if err != nil {
		return nil, err
	}
	l := circuit.NewLayouter(cc.cs, asm)
	if err := cc.circ.Synthesize(l); err != nil {
		return nil, fmt.Errorf("synthesizing: %w", err)
	}
	return asm, nil
}

// Check validates a populated grid against the finalized system, returning
// every violation.
func (cc *CompiledCircuit) Check(asm *circuit.Assembly) []plonk.Violation {
	return checker.CheckParallel(asm, cc.nbWorkers)
}
