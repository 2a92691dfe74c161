package acir

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Circuits are stored as CBOR: schema-less, deterministic with canonical
// options, and stable across toolchain versions as long as field names are.

// Serialize writes the circuit to w.
func (c *Circuit) Serialize(w io.Writer) error {
	opts := cbor.CanonicalEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return err
	}
	return em.NewEncoder(w).Encode(c)
}

// DeserializeCircuit reads a circuit written by Serialize and validates it.
func DeserializeCircuit(r io.Reader) (*Circuit, error) {
	var c Circuit
	if err := cbor.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
