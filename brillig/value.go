// Package brillig is the unconstrained bytecode representation and its
// interpreter: a register machine with a growable flat memory, executing one
// program per invocation against fully concrete inputs.
package brillig

import (
	"math/big"

	"github.com/acirlabs/acvm/field"
)

// BitSize tags the integer width of a value. FieldBits means the value is a
// plain field element.
type BitSize uint8

const (
	FieldBits BitSize = 0
	U1        BitSize = 1
	U8        BitSize = 8
	U16       BitSize = 16
	U32       BitSize = 32
	U64       BitSize = 64
	U128      BitSize = 128
)

// Value is one register or memory cell: a field element with a bit size tag.
// Integer values always fit in their declared width.
type Value struct {
	Bits BitSize
	El   field.Element
}

func FieldValue(el field.Element) Value {
	return Value{Bits: FieldBits, El: el}
}

func IntValue(f field.Field, bits BitSize, v uint64) Value {
	return Value{Bits: bits, El: f.FromInterface(v)}
}

// asInt returns the value as an unsigned integer reduced to the given width.
func asInt(f field.Field, v Value, bits BitSize) *big.Int {
	x := f.ToBigInt(v.El)
	if uint(x.BitLen()) > uint(bits) {
		mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		mask.Sub(mask, big.NewInt(1))
		x.And(x, mask)
	}
	return x
}
