package blackbox

import (
	"crypto/sha256"

	"github.com/acirlabs/acvm/field"
	fieldbn254 "github.com/acirlabs/acvm/field/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Poseidon2 round numbers for the bn254 scalar field.
const (
	poseidon2FullRounds    = 8
	poseidon2PartialRounds = 56
)

// byteInputs interprets each input as one byte, per the byte-oriented digest
// convention of the circuit format.
func byteInputs(f field.Field, fn Func, inputs []Input) ([]byte, error) {
	msg := make([]byte, len(inputs))
	for i, in := range inputs {
		v, ok := f.Uint64(in.Value)
		if !ok || v > 255 || in.Bits > 8 {
			return nil, failf(fn, "input %d is not a byte", i)
		}
		msg[i] = byte(v)
	}
	return msg, nil
}

func digestOutputs(f field.Field, fn Func, digest []byte, nbOutputs int) ([]field.Element, error) {
	if nbOutputs != len(digest) {
		return nil, failf(fn, "digest has %d bytes but %d outputs are declared", len(digest), nbOutputs)
	}
	out := make([]field.Element, len(digest))
	for i, b := range digest {
		out[i] = f.FromInterface(uint64(b))
	}
	return out, nil
}

func solveSha256(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	msg, err := byteInputs(f, SHA256, inputs)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(msg)
	return digestOutputs(f, SHA256, digest[:], nbOutputs)
}

func solveBlake2s(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	msg, err := byteInputs(f, Blake2s, inputs)
	if err != nil {
		return nil, err
	}
	digest := blake2s.Sum256(msg)
	return digestOutputs(f, Blake2s, digest[:], nbOutputs)
}

func solveKeccak256(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	msg, err := byteInputs(f, Keccak256, inputs)
	if err != nil {
		return nil, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(msg)
	return digestOutputs(f, Keccak256, h.Sum(nil), nbOutputs)
}

// solveMiMC hashes a sequence of field elements to a single field element.
func solveMiMC(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) == 0 || nbOutputs != 1 {
		return nil, failf(MiMC, "expects at least 1 input and exactly 1 output")
	}
	h := mimc.NewMiMC()
	for _, in := range inputs {
		e := fieldbn254.ToFr(in.Value)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, failf(MiMC, "%v", err)
		}
	}
	var res fr.Element
	res.SetBytes(h.Sum(nil))
	return []field.Element{fieldbn254.FromFr(res)}, nil
}

// solvePoseidon2 applies the poseidon2 permutation to the full input state.
// The state width equals the number of inputs and outputs.
func solvePoseidon2(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) == 0 || nbOutputs != len(inputs) {
		return nil, failf(Poseidon2Permutation, "state width mismatch: %d inputs, %d outputs", len(inputs), nbOutputs)
	}
	state := make([]fr.Element, len(inputs))
	for i, in := range inputs {
		state[i] = fieldbn254.ToFr(in.Value)
	}
	perm := poseidon2.NewPermutation(len(state), poseidon2FullRounds, poseidon2PartialRounds)
	if err := perm.Permutation(state); err != nil {
		return nil, failf(Poseidon2Permutation, "%v", err)
	}
	out := make([]field.Element, len(state))
	for i, e := range state {
		out[i] = fieldbn254.FromFr(e)
	}
	return out, nil
}
