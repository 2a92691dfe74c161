// Package blackbox implements the native cryptographic primitives reachable
// from circuits and bytecode. The set of function identifiers is closed: an
// identifier outside this list is a configuration error of the embedding
// toolchain, not a runtime failure.
package blackbox

import "fmt"

type Func uint8

const (
	AND Func = iota
	XOR
	Range
	SHA256
	Blake2s
	Keccak256
	MiMC
	Poseidon2Permutation
	AES128Encrypt
	EcdsaSecp256k1
	EcdsaSecp256r1
	EmbeddedCurveAdd
	EmbeddedCurveDouble
	MultiScalarMul
	FixedBaseScalarMul
)

var funcNames = map[Func]string{
	AND:                  "and",
	XOR:                  "xor",
	Range:                "range",
	SHA256:               "sha256",
	Blake2s:              "blake2s",
	Keccak256:            "keccak256",
	MiMC:                 "mimc",
	Poseidon2Permutation: "poseidon2_permutation",
	AES128Encrypt:        "aes128_encrypt",
	EcdsaSecp256k1:       "ecdsa_secp256k1",
	EcdsaSecp256r1:       "ecdsa_secp256r1",
	EmbeddedCurveAdd:     "embedded_curve_add",
	EmbeddedCurveDouble:  "embedded_curve_double",
	MultiScalarMul:       "multi_scalar_mul",
	FixedBaseScalarMul:   "fixed_base_scalar_mul",
}

func (f Func) String() string {
	if s, ok := funcNames[f]; ok {
		return s
	}
	return fmt.Sprintf("blackbox(%d)", uint8(f))
}

// FuncFromString resolves a function name, for artifact deserialization.
func FuncFromString(s string) (Func, bool) {
	for f, name := range funcNames {
		if name == s {
			return f, true
		}
	}
	return 0, false
}
