package brillig

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// SerializeTable writes a bytecode table keyed by program id.
func SerializeTable(w io.Writer, table map[uint32]*Program) error {
	opts := cbor.CanonicalEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return err
	}
	return em.NewEncoder(w).Encode(table)
}

// DeserializeTable reads a bytecode table written by SerializeTable.
func DeserializeTable(r io.Reader) (map[uint32]*Program, error) {
	var table map[uint32]*Program
	if err := cbor.NewDecoder(r).Decode(&table); err != nil {
		return nil, err
	}
	return table, nil
}
