package m31

import (
	"testing"

	"github.com/consensys/gnark/constraint"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func element(x uint32) constraint.Element {
	return constraint.Element{uint64(x) % P}
}

func TestFieldLaws(t *testing.T) {
	fd := &Field{}
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)

	properties.Property("addition commutes", prop.ForAll(
		func(x, y uint32) bool {
			return fd.Add(element(x), element(y)) == fd.Add(element(y), element(x))
		}, gen.UInt32(), gen.UInt32(),
	))
	properties.Property("multiplication commutes", prop.ForAll(
		func(x, y uint32) bool {
			return fd.Mul(element(x), element(y)) == fd.Mul(element(y), element(x))
		}, gen.UInt32(), gen.UInt32(),
	))
	properties.Property("multiplication associates", prop.ForAll(
		func(x, y, z uint32) bool {
			a, b, c := element(x), element(y), element(z)
			return fd.Mul(fd.Mul(a, b), c) == fd.Mul(a, fd.Mul(b, c))
		}, gen.UInt32(), gen.UInt32(), gen.UInt32(),
	))
	properties.Property("multiplication distributes over addition", prop.ForAll(
		func(x, y, z uint32) bool {
			a, b, c := element(x), element(y), element(z)
			return fd.Mul(a, fd.Add(b, c)) == fd.Add(fd.Mul(a, b), fd.Mul(a, c))
		}, gen.UInt32(), gen.UInt32(), gen.UInt32(),
	))
	properties.Property("subtraction inverts addition", prop.ForAll(
		func(x, y uint32) bool {
			a, b := element(x), element(y)
			return fd.Sub(fd.Add(a, b), b) == a
		}, gen.UInt32(), gen.UInt32(),
	))
	properties.Property("negation is subtraction from zero", prop.ForAll(
		func(x uint32) bool {
			a := element(x)
			return fd.Neg(a) == fd.Sub(constraint.Element{}, a)
		}, gen.UInt32(),
	))
	properties.Property("nonzero elements invert", prop.ForAll(
		func(x uint32) bool {
			a := element(x)
			if a == (constraint.Element{}) {
				_, ok := fd.Inverse(a)
				return !ok
			}
			inv, ok := fd.Inverse(a)
			return ok && fd.IsOne(fd.Mul(a, inv))
		}, gen.UInt32(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFieldBasics(t *testing.T) {
	fd := &Field{}
	require.True(t, fd.IsOne(fd.One()))
	require.Equal(t, element(0), fd.FromInterface(P))
	require.Equal(t, element(3), fd.FromInterface(uint64(P)+3))
	require.Equal(t, "7", fd.String(element(7)))
	v, ok := fd.Uint64(element(42))
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
	require.Equal(t, int64(P), fd.Field().Int64())
	require.Equal(t, 31, fd.FieldBitLen())
}
