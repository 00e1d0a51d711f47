// Package field defines the arithmetic capability the circuit layer is
// written against. Concrete fields live in the subpackages; the rest of the
// repository only sees this interface.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint"

	"github.com/merdan-9/halo2-examples/field/babybear"
	"github.com/merdan-9/halo2-examples/field/bn254"
	"github.com/merdan-9/halo2-examples/field/m31"
)

// Field extends gnark's constraint.Field with modulus accessors and the
// serialized element width.
type Field interface {
	constraint.Field
	Field() *big.Int
	FieldBitLen() int
	SerializedLen() int
}

func GetFieldFromOrder(x *big.Int) Field {
	if x.Cmp(bn254.ScalarField) == 0 {
		return &bn254.Field{}
	}
	if x.Cmp(m31.ScalarField) == 0 {
		return &m31.Field{}
	}
	if x.Cmp(babybear.ScalarField) == 0 {
		return &babybear.Field{}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}

// GetFieldId returns the stable id used in serialized artifacts.
func GetFieldId(f Field) uint64 {
	switch {
	case f.Field().Cmp(bn254.ScalarField) == 0:
		return 1
	case f.Field().Cmp(m31.ScalarField) == 0:
		return 2
	case f.Field().Cmp(babybear.ScalarField) == 0:
		return 3
	}
	panic(fmt.Sprintf("unsupported field %v", f.Field()))
}

func GetFieldById(id uint64) Field {
	switch id {
	case 1:
		return &bn254.Field{}
	case 2:
		return &m31.Field{}
	case 3:
		return &babybear.Field{}
	}
	panic(fmt.Sprintf("unsupported field id %v", id))
}
