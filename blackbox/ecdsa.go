package blackbox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	"github.com/acirlabs/acvm/field"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decred_ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ECDSA verification inputs, in order: 32-byte public key x limb, 32-byte
// public key y limb, 64-byte signature (r || s), 32-byte hashed message.
// The single output is 1 on a valid signature, 0 otherwise.
const ecdsaNbInputs = 32 + 32 + 64 + 32

func ecdsaOperands(f field.Field, fn Func, inputs []Input, nbOutputs int) (pubX, pubY, sig, hashed []byte, err error) {
	if len(inputs) != ecdsaNbInputs || nbOutputs != 1 {
		return nil, nil, nil, nil, failf(fn, "expects %d byte inputs and 1 output, got %d and %d", ecdsaNbInputs, len(inputs), nbOutputs)
	}
	raw, err := byteInputs(f, fn, inputs)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return raw[0:32], raw[32:64], raw[64:128], raw[128:160], nil
}

func verdict(f field.Field, ok bool) []field.Element {
	if ok {
		return []field.Element{f.One()}
	}
	return []field.Element{{}}
}

func solveEcdsaSecp256k1(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	pubX, pubY, sig, hashed, err := ecdsaOperands(f, EcdsaSecp256k1, inputs, nbOutputs)
	if err != nil {
		return nil, err
	}
	serialized := make([]byte, 0, 65)
	serialized = append(serialized, 0x04)
	serialized = append(serialized, pubX...)
	serialized = append(serialized, pubY...)
	pubKey, err := secp256k1.ParsePubKey(serialized)
	if err != nil {
		return nil, failf(EcdsaSecp256k1, "invalid public key: %v", err)
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[0:32]); overflow || r.IsZero() {
		return nil, failf(EcdsaSecp256k1, "invalid signature scalar r")
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() {
		return nil, failf(EcdsaSecp256k1, "invalid signature scalar s")
	}
	ok := decred_ecdsa.NewSignature(&r, &s).Verify(hashed, pubKey)
	return verdict(f, ok), nil
}

func solveEcdsaSecp256r1(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	pubX, pubY, sig, hashed, err := ecdsaOperands(f, EcdsaSecp256r1, inputs, nbOutputs)
	if err != nil {
		return nil, err
	}
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(pubX)
	y := new(big.Int).SetBytes(pubY)
	if !curve.IsOnCurve(x, y) {
		return nil, failf(EcdsaSecp256r1, "public key is not on the curve")
	}
	pubKey := ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	ok := ecdsa.Verify(&pubKey, hashed, r, s)
	return verdict(f, ok), nil
}
