package solver

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/utils"
)

// WitnessMap assigns field elements to witness indices. Values are unassigned
// until solved, then immutable for the lifetime of the solve; the solver is
// the only writer.
type WitnessMap struct {
	values map[acir.Witness]field.Element
}

func NewWitnessMap() *WitnessMap {
	return &WitnessMap{values: make(map[acir.Witness]field.Element)}
}

func (w *WitnessMap) Get(i acir.Witness) (field.Element, bool) {
	v, ok := w.values[i]
	return v, ok
}

// Assign writes a value. Re-assigning the same value is a no-op; a different
// value means the circuit is contradictory.
func (w *WitnessMap) Assign(i acir.Witness, v field.Element) error {
	if old, ok := w.values[i]; ok {
		if old != v {
			return fmt.Errorf("witness %d already assigned a different value", i)
		}
		return nil
	}
	w.values[i] = v
	return nil
}

func (w *WitnessMap) Len() int {
	return len(w.values)
}

func (w *WitnessMap) Clone() *WitnessMap {
	res := NewWitnessMap()
	for k, v := range w.values {
		res.values[k] = v
	}
	return res
}

// Indices returns the assigned witness indices in ascending order.
func (w *WitnessMap) Indices() []acir.Witness {
	res := make([]acir.Witness, 0, len(w.values))
	for k := range w.values {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Serialize writes the map as (count, then sorted index/value pairs) in the
// flat binary witness format.
func (w *WitnessMap) Serialize(f field.Field) []byte {
	o := utils.OutputBuf{}
	indices := w.Indices()
	o.AppendUint32(uint32(len(indices)))
	for _, i := range indices {
		o.AppendUint32(uint32(i))
		o.AppendBigInt(f.ToBigInt(w.values[i]))
	}
	return o.Bytes()
}

// DeserializeWitnessMap reads the format written by Serialize.
func DeserializeWitnessMap(f field.Field, buf []byte) (*WitnessMap, error) {
	in := utils.NewInputBuf(buf)
	n, err := in.ReadUint32()
	if err != nil {
		return nil, err
	}
	w := NewWitnessMap()
	for i := uint32(0); i < n; i++ {
		idx, err := in.ReadUint32()
		if err != nil {
			return nil, err
		}
		v, err := in.ReadBigInt()
		if err != nil {
			return nil, err
		}
		w.values[acir.Witness(idx)] = f.FromInterface(v)
	}
	return w, nil
}

// MarshalJSONWith encodes the map as {"index": "0x..."} using the given
// engine. Used by the CLI witness files.
func (w *WitnessMap) MarshalJSONWith(f field.Field) ([]byte, error) {
	m := make(map[string]string, len(w.values))
	for k, v := range w.values {
		m[fmt.Sprintf("%d", k)] = "0x" + f.ToBigInt(v).Text(16)
	}
	return json.Marshal(m)
}

// UnmarshalJSONWith decodes the format written by MarshalJSONWith. Values may
// be hex (0x-prefixed) or decimal strings.
func (w *WitnessMap) UnmarshalJSONWith(f field.Field, data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		var idx uint32
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
			return fmt.Errorf("invalid witness index %q", k)
		}
		x, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return fmt.Errorf("invalid witness value %q", v)
		}
		w.values[acir.Witness(idx)] = f.FromInterface(x)
	}
	return nil
}
