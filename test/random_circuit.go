package test

import (
	"math/rand"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/circuit"
	"github.com/merdan-9/halo2-examples/field"
	"github.com/merdan-9/halo2-examples/plonk"
)

// The random circuit generator builds arithmetic chains out of the same
// primitives the gadgets use: public inputs loaded into advice cells, add
// and mul gates, inter-region copies, and a terminal instance binding. It
// exists to fuzz the layouter, the copy tracker and the checker together.

type randRange struct {
	l int
	r int
}

func (rr randRange) sample(rnd *rand.Rand) int {
	return rr.l + rnd.Intn(rr.r-rr.l+1)
}

type randomCircuitConfig struct {
	seed     int
	nbInputs randRange
	nbOps    randRange
	// percentage of ops that multiply instead of add
	mulPercent int
	field      field.Field
}

// randomOp combines two earlier values; x and y index the value list, which
// starts with the public inputs.
type randomOp struct {
	x, y int
	mul  bool
}

type randomCircuit struct {
	conf *randomCircuitConfig
	prog []randomOp

	nbInputs int

	colA     plonk.Column
	colB     plonk.Column
	colC     plonk.Column
	instance plonk.Column
	sAdd     plonk.Selector
	sMul     plonk.Selector
}

// newRandomCircuit draws a program from the config's seed.
func newRandomCircuit(conf *randomCircuitConfig) *randomCircuit {
	rnd := rand.New(rand.NewSource(int64(conf.seed)))
	nbInputs := conf.nbInputs.sample(rnd)
	nbOps := conf.nbOps.sample(rnd)
	prog := make([]randomOp, nbOps)
	for i := range prog {
		prog[i] = randomOp{
			x:   rnd.Intn(nbInputs + i),
			y:   rnd.Intn(nbInputs + i),
			mul: rnd.Intn(100) < conf.mulPercent,
		}
	}
	return &randomCircuit{conf: conf, prog: prog, nbInputs: nbInputs}
}

func (rc *randomCircuit) Configure(cs *plonk.ConstraintSystem) {
	rc.colA = cs.AdviceColumn()
	rc.colB = cs.AdviceColumn()
	rc.colC = cs.AdviceColumn()
	rc.instance = cs.InstanceColumn()
	cs.EnableEquality(rc.colA)
	cs.EnableEquality(rc.colB)
	cs.EnableEquality(rc.colC)
	cs.EnableEquality(rc.instance)

	a := cs.QueryAdvice(rc.colA, plonk.RotationCur)
	b := cs.QueryAdvice(rc.colB, plonk.RotationCur)
	c := cs.QueryAdvice(rc.colC, plonk.RotationCur)

	rc.sAdd = cs.NewSelector()
	sAdd := cs.QuerySelector(rc.sAdd)
	cs.CreateGate("add", rc.sAdd, plonk.Constraint{
		Name: "a + b = c",
		Expr: plonk.Mul(sAdd, plonk.Sub(plonk.Add(a, b), c)),
	})

	rc.sMul = cs.NewSelector()
	sMul := cs.QuerySelector(rc.sMul)
	cs.CreateGate("mul", rc.sMul, plonk.Constraint{
		Name: "a * b = c",
		Expr: plonk.Mul(sMul, plonk.Sub(plonk.Mul(a, b), c)),
	})
}

func (rc *randomCircuit) Synthesize(l *circuit.Layouter) error {
	fd := l.Field()
	cells := make([]*circuit.AssignedCell, 0, rc.nbInputs+len(rc.prog))

	for i := 0; i < rc.nbInputs; i++ {
		i := i
		err := l.AssignRegion("input", func(r *circuit.Region) error {
			cell, err := r.AssignAdviceFromInstance("input", rc.instance, i, rc.colA, 0)
			if err != nil {
				return err
			}
			cells = append(cells, cell)
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, op := range rc.prog {
		op := op
		err := l.AssignRegion("op", func(r *circuit.Region) error {
			sel := rc.sAdd
			if op.mul {
				sel = rc.sMul
			}
			if err := r.EnableSelector(sel, 0); err != nil {
				return err
			}
			x, err := r.CopyAdvice("x", cells[op.x], rc.colA, 0)
			if err != nil {
				return err
			}
			y, err := r.CopyAdvice("y", cells[op.y], rc.colB, 0)
			if err != nil {
				return err
			}
			v := fd.Add(x.Value(), y.Value())
			if op.mul {
				v = fd.Mul(x.Value(), y.Value())
			}
			cell, err := r.AssignAdvice("out", rc.colC, 0, v)
			if err != nil {
				return err
			}
			cells = append(cells, cell)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return l.ConstrainInstance(cells[len(cells)-1].Cell(), rc.instance, rc.nbInputs)
}

// randomInputs draws one public-input assignment; caseSeed varies the values
// while the program stays fixed.
func (rc *randomCircuit) randomInputs(caseSeed int) []constraint.Element {
	rnd := rand.New(rand.NewSource(int64(rc.conf.seed)<<20 + int64(caseSeed)))
	inputs := make([]constraint.Element, rc.nbInputs)
	for i := range inputs {
		inputs[i] = rc.conf.field.FromInterface(rnd.Uint64())
	}
	return inputs
}

// output runs the program outside the grid, the reference value for the
// terminal instance binding.
func (rc *randomCircuit) output(inputs []constraint.Element) constraint.Element {
	fd := rc.conf.field
	values := make([]constraint.Element, 0, rc.nbInputs+len(rc.prog))
	values = append(values, inputs...)
	for _, op := range rc.prog {
		v := fd.Add(values[op.x], values[op.y])
		if op.mul {
			v = fd.Mul(values[op.x], values[op.y])
		}
		values = append(values, v)
	}
	return values[len(values)-1]
}
