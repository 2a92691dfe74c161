package blackbox

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acirlabs/acvm/field"
)

func aesInputs(f field.Field, plaintext, iv, key []byte) []Input {
	raw := make([]byte, 0, len(plaintext)+32)
	raw = append(raw, plaintext...)
	raw = append(raw, iv...)
	raw = append(raw, key...)
	return bytesToInputs(f, raw)
}

func cbcEncrypt(t *testing.T, plaintext, iv, key []byte) []byte {
	t.Helper()
	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte{}, plaintext...), make([]byte, padLen)...)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext
}

func TestAes128Encrypt(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	key := []byte("0123456789abcdef")
	iv := []byte("fedcba9876543210")
	plaintext := []byte("attack at dawn")

	expected := cbcEncrypt(t, plaintext, iv, key)
	out, err := r.Solve(f, AES128Encrypt, aesInputs(f, plaintext, iv, key), len(expected))
	require.NoError(t, err)
	require.Len(t, out, len(expected))
	for i, b := range expected {
		require.Equal(t, f.FromInterface(uint64(b)), out[i], "byte %d", i)
	}
}

func TestAes128FullBlockGainsPaddingBlock(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	key := []byte("0123456789abcdef")
	iv := []byte("fedcba9876543210")
	plaintext := []byte("exactly 16 bytes")

	expected := cbcEncrypt(t, plaintext, iv, key)
	require.Len(t, expected, 32)

	out, err := r.Solve(f, AES128Encrypt, aesInputs(f, plaintext, iv, key), 32)
	require.NoError(t, err)
	require.Len(t, out, 32)
}

func TestAes128RejectsWrongOutputCount(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	key := []byte("0123456789abcdef")
	iv := []byte("fedcba9876543210")
	_, err := r.Solve(f, AES128Encrypt, aesInputs(f, []byte("hi"), iv, key), 3)
	require.Error(t, err)
}

func TestAes128RejectsShortInput(t *testing.T) {
	f := field.BN254()
	r := DefaultRegistry()

	_, err := r.Solve(f, AES128Encrypt, bytesToInputs(f, make([]byte, 16)), 16)
	require.Error(t, err)
}
