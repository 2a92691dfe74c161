package acir

import (
	"fmt"

	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/field"
)

// OpcodeKind tags the closed set of opcode variants. Each kind has exactly
// one solving function in the solver package.
type OpcodeKind uint8

const (
	KindAssertZero OpcodeKind = iota
	KindBlackBoxFuncCall
	KindBrilligCall
	KindMemoryInit
	KindMemoryOp
)

func (k OpcodeKind) String() string {
	switch k {
	case KindAssertZero:
		return "ASSERT_ZERO"
	case KindBlackBoxFuncCall:
		return "BLACKBOX"
	case KindBrilligCall:
		return "BRILLIG_CALL"
	case KindMemoryInit:
		return "MEM_INIT"
	case KindMemoryOp:
		return "MEM_OP"
	default:
		return fmt.Sprintf("opcode(%d)", uint8(k))
	}
}

// FunctionInput is one blackbox argument: a constant or a witness reference,
// with its declared bit width. Read-only for the callee.
type FunctionInput struct {
	IsConst  bool
	Constant field.Element
	W        Witness
	Bits     uint32
}

func ConstantInput(c field.Element, bits uint32) FunctionInput {
	return FunctionInput{IsConst: true, Constant: c, Bits: bits}
}

func WitnessInput(w Witness, bits uint32) FunctionInput {
	return FunctionInput{W: w, Bits: bits}
}

// BlackBoxFuncCall invokes a native primitive: ordered inputs, ordered output
// witnesses.
type BlackBoxFuncCall struct {
	Func    blackbox.Func
	Inputs  []FunctionInput
	Outputs []Witness
}

type BrilligInputKind uint8

const (
	BrilligInputSingle BrilligInputKind = iota
	BrilligInputArray
)

// BrilligInput is either one expression or an ordered array of expressions.
type BrilligInput struct {
	Kind   BrilligInputKind
	Single *Expression
	Array  []*Expression
}

type BrilligOutputKind uint8

const (
	BrilligOutputSimple BrilligOutputKind = iota
	BrilligOutputArray
)

// BrilligOutput designates the witnesses receiving an interpreter result.
type BrilligOutput struct {
	Kind   BrilligOutputKind
	Simple Witness
	Array  []Witness
}

// BrilligCall runs the bytecode program ID with the given inputs. When
// Predicate is present and evaluates to zero the call is skipped and the
// outputs are zeroed.
type BrilligCall struct {
	ID        uint32
	Inputs    []BrilligInput
	Outputs   []BrilligOutput
	Predicate *Expression
}

// BlockID identifies one indexed memory block.
type BlockID uint32

// MemoryInit creates a block and fills it with the given witnesses. A block
// is initialized exactly once.
type MemoryInit struct {
	Block BlockID
	Init  []Witness
}

type MemOpKind uint8

const (
	MemRead MemOpKind = iota
	MemWrite
)

// MemoryOp reads or writes one block cell. The Index expression must resolve
// to a known in-range address. For reads, Value must degenerate to a single
// witness which receives the cell content; for writes, Value is the
// expression stored.
type MemoryOp struct {
	Block BlockID
	Op    MemOpKind
	Index Expression
	Value Expression
}

// Opcode is the closed tagged variant over all constraint operations. Exactly
// one payload field matching Kind is set.
type Opcode struct {
	Kind       OpcodeKind
	AssertZero *Expression       `cbor:",omitempty"`
	BlackBox   *BlackBoxFuncCall `cbor:",omitempty"`
	Brillig    *BrilligCall      `cbor:",omitempty"`
	MemInit    *MemoryInit       `cbor:",omitempty"`
	MemOp      *MemoryOp         `cbor:",omitempty"`
}

func NewAssertZero(e *Expression) Opcode {
	return Opcode{Kind: KindAssertZero, AssertZero: e}
}

func NewBlackBoxFuncCall(fn blackbox.Func, inputs []FunctionInput, outputs []Witness) Opcode {
	return Opcode{Kind: KindBlackBoxFuncCall, BlackBox: &BlackBoxFuncCall{Func: fn, Inputs: inputs, Outputs: outputs}}
}

func NewBrilligCall(id uint32, inputs []BrilligInput, outputs []BrilligOutput, predicate *Expression) Opcode {
	return Opcode{Kind: KindBrilligCall, Brillig: &BrilligCall{ID: id, Inputs: inputs, Outputs: outputs, Predicate: predicate}}
}

func NewMemoryInit(block BlockID, init []Witness) Opcode {
	return Opcode{Kind: KindMemoryInit, MemInit: &MemoryInit{Block: block, Init: init}}
}

func NewMemoryOp(block BlockID, op MemOpKind, index, value Expression) Opcode {
	return Opcode{Kind: KindMemoryOp, MemOp: &MemoryOp{Block: block, Op: op, Index: index, Value: value}}
}
