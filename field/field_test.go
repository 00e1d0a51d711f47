package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/merdan-9/halo2-examples/field/babybear"
	"github.com/merdan-9/halo2-examples/field/bn254"
	"github.com/merdan-9/halo2-examples/field/m31"
)

func TestFieldRegistry(t *testing.T) {
	for _, fd := range []Field{&bn254.Field{}, &m31.Field{}, &babybear.Field{}} {
		require.Equal(t, fd, GetFieldFromOrder(fd.Field()))
		require.Equal(t, fd, GetFieldById(GetFieldId(fd)))
	}
	require.Panics(t, func() { GetFieldFromOrder(big.NewInt(7)) })
	require.Panics(t, func() { GetFieldById(99) })
}
