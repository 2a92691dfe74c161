package blackbox

import (
	"math/big"

	"github.com/acirlabs/acvm/field"
)

// intOperand converts an input to an unsigned integer on its declared bit
// width, rejecting values outside that range.
func intOperand(f field.Field, fn Func, in Input) (*big.Int, error) {
	v := f.ToBigInt(in.Value)
	if uint32(v.BitLen()) > in.Bits {
		return nil, failf(fn, "operand %s does not fit in %d bits", f.String(in.Value), in.Bits)
	}
	return v, nil
}

func solveBitwise(fn Func, f field.Field, inputs []Input, nbOutputs int, op func(z, x, y *big.Int) *big.Int) ([]field.Element, error) {
	if len(inputs) != 2 || nbOutputs != 1 {
		return nil, failf(fn, "expects 2 inputs and 1 output, got %d and %d", len(inputs), nbOutputs)
	}
	if inputs[0].Bits != inputs[1].Bits {
		return nil, failf(fn, "mismatched operand widths %d and %d", inputs[0].Bits, inputs[1].Bits)
	}
	lhs, err := intOperand(f, fn, inputs[0])
	if err != nil {
		return nil, err
	}
	rhs, err := intOperand(f, fn, inputs[1])
	if err != nil {
		return nil, err
	}
	res := op(new(big.Int), lhs, rhs)
	return []field.Element{f.FromInterface(res)}, nil
}

func solveAnd(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	return solveBitwise(AND, f, inputs, nbOutputs, (*big.Int).And)
}

func solveXor(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	return solveBitwise(XOR, f, inputs, nbOutputs, (*big.Int).Xor)
}

// solveRange asserts that the single input fits in its declared bit width.
// It produces no output.
func solveRange(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) != 1 || nbOutputs != 0 {
		return nil, failf(Range, "expects 1 input and 0 outputs, got %d and %d", len(inputs), nbOutputs)
	}
	if inputs[0].Bits > uint32(f.FieldBitLen()) {
		return nil, failf(Range, "range width %d exceeds the field bit length", inputs[0].Bits)
	}
	v := f.ToBigInt(inputs[0].Value)
	if uint32(v.BitLen()) > inputs[0].Bits {
		return nil, failf(Range, "value %s does not fit in %d bits", f.String(inputs[0].Value), inputs[0].Bits)
	}
	return nil, nil
}
