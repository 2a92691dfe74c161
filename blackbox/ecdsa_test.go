package blackbox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decred_ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/acirlabs/acvm/field"
)

func ecdsaInputs(f field.Field, pubX, pubY, sig, hashed []byte) []Input {
	raw := make([]byte, 0, ecdsaNbInputs)
	raw = append(raw, pubX...)
	raw = append(raw, pubY...)
	raw = append(raw, sig...)
	raw = append(raw, hashed...)
	return bytesToInputs(f, raw)
}

func TestEcdsaSecp256k1(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	hashed := sha256.Sum256([]byte("message"))
	sig := decred_ecdsa.Sign(priv, hashed[:])

	sigR := sig.R()
	sigS := sig.S()
	rBytes := sigR.Bytes()
	sBytes := sigS.Bytes()
	sigBytes := append(rBytes[:], sBytes[:]...)

	serialized := priv.PubKey().SerializeUncompressed()
	pubX, pubY := serialized[1:33], serialized[33:65]

	out, err := r.Solve(f, EcdsaSecp256k1, ecdsaInputs(f, pubX, pubY, sigBytes, hashed[:]), 1)
	require.NoError(t, err)
	require.Equal(t, []field.Element{f.One()}, out)

	// a corrupted message hash verifies to zero, not an error
	badHash := sha256.Sum256([]byte("other message"))
	out, err = r.Solve(f, EcdsaSecp256k1, ecdsaInputs(f, pubX, pubY, sigBytes, badHash[:]), 1)
	require.NoError(t, err)
	require.True(t, out[0].IsZero())
}

func TestEcdsaSecp256k1RejectsBadKey(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	pubX := make([]byte, 32)
	pubY := make([]byte, 32)
	pubX[31] = 1
	pubY[31] = 1
	sig := make([]byte, 64)
	sig[31] = 1
	sig[63] = 1
	hashed := make([]byte, 32)

	_, err := r.Solve(f, EcdsaSecp256k1, ecdsaInputs(f, pubX, pubY, sig, hashed), 1)
	require.Error(t, err)
}

func TestEcdsaSecp256r1(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	hashed := sha256.Sum256([]byte("message"))
	sigR, sigS, err := ecdsa.Sign(rand.Reader, priv, hashed[:])
	require.NoError(t, err)

	sig := make([]byte, 64)
	sigR.FillBytes(sig[:32])
	sigS.FillBytes(sig[32:])

	pubX := make([]byte, 32)
	pubY := make([]byte, 32)
	priv.PublicKey.X.FillBytes(pubX)
	priv.PublicKey.Y.FillBytes(pubY)

	out, err := r.Solve(f, EcdsaSecp256r1, ecdsaInputs(f, pubX, pubY, sig, hashed[:]), 1)
	require.NoError(t, err)
	require.Equal(t, []field.Element{f.One()}, out)

	// flipping a signature byte verifies to zero
	sig[0] ^= 0xff
	out, err = r.Solve(f, EcdsaSecp256r1, ecdsaInputs(f, pubX, pubY, sig, hashed[:]), 1)
	require.NoError(t, err)
	require.True(t, out[0].IsZero())
}

func TestEcdsaArity(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	_, err := r.Solve(f, EcdsaSecp256k1, bytesToInputs(f, make([]byte, 10)), 1)
	require.Error(t, err)
	_, err = r.Solve(f, EcdsaSecp256r1, bytesToInputs(f, make([]byte, ecdsaNbInputs)), 2)
	require.Error(t, err)
}
