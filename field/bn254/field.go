package bn254

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/constraint"
)

var ScalarField = fr.Modulus()

type Field struct{}

// ToFr reinterprets a coefficient as an fr element. Both sides hold the
// Montgomery form on four limbs, the two spare limbs of constraint.U64 stay
// zero.
func ToFr(a constraint.U64) fr.Element {
	return fr.Element{a[0], a[1], a[2], a[3]}
}

func FromFr(e fr.Element) constraint.U64 {
	var r constraint.U64
	copy(r[:], e[:])
	return r
}

func (engine *Field) FromInterface(i interface{}) constraint.U64 {
	var e fr.Element
	if _, err := e.SetInterface(i); err != nil {
		panic(fmt.Sprintf("invalid field element %v: %v", i, err))
	}
	return FromFr(e)
}

func (engine *Field) ToBigInt(c constraint.U64) *big.Int {
	e := ToFr(c)
	r := new(big.Int)
	e.BigInt(r)
	return r
}

func (engine *Field) Mul(a, b constraint.U64) constraint.U64 {
	_a := ToFr(a)
	_b := ToFr(b)
	_a.Mul(&_a, &_b)
	return FromFr(_a)
}

func (engine *Field) Add(a, b constraint.U64) constraint.U64 {
	_a := ToFr(a)
	_b := ToFr(b)
	_a.Add(&_a, &_b)
	return FromFr(_a)
}

func (engine *Field) Sub(a, b constraint.U64) constraint.U64 {
	_a := ToFr(a)
	_b := ToFr(b)
	_a.Sub(&_a, &_b)
	return FromFr(_a)
}

func (engine *Field) Neg(a constraint.U64) constraint.U64 {
	e := ToFr(a)
	e.Neg(&e)
	return FromFr(e)
}

// Inverse returns the modular inverse of a. Inverting the additive identity
// is undefined and reported through the second return value.
func (engine *Field) Inverse(a constraint.U64) (constraint.U64, bool) {
	if a.IsZero() {
		return a, false
	}
	e := ToFr(a)
	if e.IsOne() {
		return a, true
	}
	e.Inverse(&e)
	return FromFr(e), true
}

func (engine *Field) IsOne(a constraint.U64) bool {
	e := ToFr(a)
	return e.IsOne()
}

func (engine *Field) One() constraint.U64 {
	e := fr.One()
	return FromFr(e)
}

func (engine *Field) String(a constraint.U64) string {
	e := ToFr(a)
	return e.String()
}

func (engine *Field) Uint64(a constraint.U64) (uint64, bool) {
	e := ToFr(a)
	if !e.IsUint64() {
		return 0, false
	}
	return e.Uint64(), true
}

func (engine *Field) Field() *big.Int {
	return fr.Modulus()
}

func (engine *Field) FieldBitLen() int {
	return fr.Modulus().BitLen()
}
