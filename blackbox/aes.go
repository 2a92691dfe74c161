package blackbox

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/acirlabs/acvm/field"
)

// solveAes128 encrypts in CBC mode with PKCS7 padding. Inputs are the
// plaintext bytes followed by a 16-byte IV and a 16-byte key; outputs are the
// padded ciphertext bytes.
func solveAes128(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) < 32 {
		return nil, failf(AES128Encrypt, "expects plaintext plus 16-byte iv and 16-byte key, got %d inputs", len(inputs))
	}
	raw, err := byteInputs(f, AES128Encrypt, inputs)
	if err != nil {
		return nil, err
	}
	plaintext := raw[:len(raw)-32]
	iv := raw[len(raw)-32 : len(raw)-16]
	key := raw[len(raw)-16:]

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := make([]byte, len(plaintext)+padLen)
	copy(padded, plaintext)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	if nbOutputs != len(padded) {
		return nil, failf(AES128Encrypt, "ciphertext has %d bytes but %d outputs are declared", len(padded), nbOutputs)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, failf(AES128Encrypt, "%v", err)
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	out := make([]field.Element, len(ciphertext))
	for i, b := range ciphertext {
		out[i] = f.FromInterface(uint64(b))
	}
	return out, nil
}
