// Package field is the exact arithmetic layer shared by the circuit model,
// the bytecode interpreter and the blackbox functions. All values are members
// of a fixed prime field and all comparisons are exact.
package field

import (
	"fmt"
	"math/big"

	"github.com/acirlabs/acvm/field/bn254"
	"github.com/consensys/gnark/constraint"
)

// Element is the in-memory representation of a field element. It always holds
// the Montgomery form of the backing gnark-crypto element, so two Elements are
// equal iff their limbs are equal.
type Element = constraint.U64

type Field interface {
	constraint.Field[Element]
	Field() *big.Int
	FieldBitLen() int
}

func GetFieldFromOrder(x *big.Int) Field {
	if x.Cmp(bn254.ScalarField) == 0 {
		return &bn254.Field{}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}

// BN254 returns the engine for the bn254 scalar field, the proving field used
// by the surrounding toolchain.
func BN254() Field {
	return &bn254.Field{}
}
