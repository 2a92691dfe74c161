package brillig

import (
	"fmt"

	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/field"
)

// RegisterIndex addresses one slot of the register bank.
type RegisterIndex uint32

type BinaryFieldOpKind uint8

const (
	FieldAdd BinaryFieldOpKind = iota
	FieldSub
	FieldMul
	FieldDiv
	FieldEquals
)

type BinaryIntOpKind uint8

const (
	IntAdd BinaryIntOpKind = iota
	IntSub
	IntMul
	IntDiv
	IntMod
	IntAnd
	IntOr
	IntXor
	IntShl
	IntShr
	IntEquals
	IntLessThan
	IntLessThanEquals
)

// OpcodeKind tags the closed instruction set. One execution function per
// kind.
type OpcodeKind uint8

const (
	OpBinaryField OpcodeKind = iota
	OpBinaryInt
	OpConst
	OpMov
	OpCast
	OpNot
	OpJump
	OpJumpIf
	OpJumpIfNot
	OpLoad
	OpStore
	OpCall
	OpReturn
	OpForeignCall
	OpBlackBox
	OpTrap
	OpStop
)

func (k OpcodeKind) String() string {
	names := [...]string{
		"binary_field", "binary_int", "const", "mov", "cast", "not",
		"jump", "jump_if", "jump_if_not", "load", "store", "call", "return",
		"foreign_call", "blackbox", "trap", "stop",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

type BinaryFieldOp struct {
	Op             BinaryFieldOpKind
	Lhs, Rhs, Dest RegisterIndex
}

type BinaryIntOp struct {
	Op             BinaryIntOpKind
	Bits           BitSize
	Lhs, Rhs, Dest RegisterIndex
}

type ConstOp struct {
	Dest  RegisterIndex
	Bits  BitSize
	Value field.Element
}

type MovOp struct {
	Dest, Src RegisterIndex
}

type CastOp struct {
	Dest, Src RegisterIndex
	Bits      BitSize
}

type NotOp struct {
	Dest, Src RegisterIndex
	Bits      BitSize
}

// JumpOp carries an absolute target. Condition is only read by JumpIf and
// JumpIfNot.
type JumpOp struct {
	Condition RegisterIndex
	Location  uint32
}

type LoadOp struct {
	Dest          RegisterIndex
	SourcePointer RegisterIndex
}

type StoreOp struct {
	DestPointer RegisterIndex
	Source      RegisterIndex
}

type CallOp struct {
	Location uint32
}

// HeapArray is a fixed-size view into VM memory: the register holds the start
// address.
type HeapArray struct {
	Pointer RegisterIndex
	Size    uint32
}

type ValueOrArrayKind uint8

const (
	ScalarOperand ValueOrArrayKind = iota
	ArrayOperand
)

// ValueOrArray is one foreign-call operand: a single register or a heap
// array.
type ValueOrArray struct {
	Kind     ValueOrArrayKind
	Register RegisterIndex
	Array    HeapArray
}

// ForeignCallOp suspends execution, emits a request to the host oracle and
// resumes at the next instruction once the matching result is supplied.
type ForeignCallOp struct {
	Function     string
	Destinations []ValueOrArray
	Inputs       []ValueOrArray
}

// BlackBoxOp invokes a native primitive over a memory region. InputBits is
// the declared width of each input element; zero means plain field elements.
type BlackBoxOp struct {
	Func      blackbox.Func
	InputBits uint32
	Input     HeapArray
	Output    HeapArray
}

type TrapOp struct {
	Message string
}

// Opcode is the closed tagged variant over all instructions. Exactly one
// payload field matching Kind is set; Return and Stop carry none.
type Opcode struct {
	Kind        OpcodeKind
	BinaryField *BinaryFieldOp `cbor:",omitempty"`
	BinaryInt   *BinaryIntOp   `cbor:",omitempty"`
	Const       *ConstOp       `cbor:",omitempty"`
	Mov         *MovOp         `cbor:",omitempty"`
	Cast        *CastOp        `cbor:",omitempty"`
	Not         *NotOp         `cbor:",omitempty"`
	Jump        *JumpOp        `cbor:",omitempty"`
	Load        *LoadOp        `cbor:",omitempty"`
	Store       *StoreOp       `cbor:",omitempty"`
	Call        *CallOp        `cbor:",omitempty"`
	ForeignCall *ForeignCallOp `cbor:",omitempty"`
	BlackBox    *BlackBoxOp    `cbor:",omitempty"`
	Trap        *TrapOp        `cbor:",omitempty"`
}

// Program is an immutable ordered instruction sequence with absolute jump
// targets. Programs end with Stop, Trap or Return; running past the last
// instruction is a trap.
type Program struct {
	Opcodes []Opcode
}

func NewBinaryFieldOp(op BinaryFieldOpKind, lhs, rhs, dest RegisterIndex) Opcode {
	return Opcode{Kind: OpBinaryField, BinaryField: &BinaryFieldOp{Op: op, Lhs: lhs, Rhs: rhs, Dest: dest}}
}

func NewBinaryIntOp(op BinaryIntOpKind, bits BitSize, lhs, rhs, dest RegisterIndex) Opcode {
	return Opcode{Kind: OpBinaryInt, BinaryInt: &BinaryIntOp{Op: op, Bits: bits, Lhs: lhs, Rhs: rhs, Dest: dest}}
}

func NewConst(dest RegisterIndex, bits BitSize, value field.Element) Opcode {
	return Opcode{Kind: OpConst, Const: &ConstOp{Dest: dest, Bits: bits, Value: value}}
}

func NewMov(dest, src RegisterIndex) Opcode {
	return Opcode{Kind: OpMov, Mov: &MovOp{Dest: dest, Src: src}}
}

func NewCast(dest, src RegisterIndex, bits BitSize) Opcode {
	return Opcode{Kind: OpCast, Cast: &CastOp{Dest: dest, Src: src, Bits: bits}}
}

func NewNot(dest, src RegisterIndex, bits BitSize) Opcode {
	return Opcode{Kind: OpNot, Not: &NotOp{Dest: dest, Src: src, Bits: bits}}
}

func NewJump(location uint32) Opcode {
	return Opcode{Kind: OpJump, Jump: &JumpOp{Location: location}}
}

func NewJumpIf(condition RegisterIndex, location uint32) Opcode {
	return Opcode{Kind: OpJumpIf, Jump: &JumpOp{Condition: condition, Location: location}}
}

func NewJumpIfNot(condition RegisterIndex, location uint32) Opcode {
	return Opcode{Kind: OpJumpIfNot, Jump: &JumpOp{Condition: condition, Location: location}}
}

func NewLoad(dest, sourcePointer RegisterIndex) Opcode {
	return Opcode{Kind: OpLoad, Load: &LoadOp{Dest: dest, SourcePointer: sourcePointer}}
}

func NewStore(destPointer, source RegisterIndex) Opcode {
	return Opcode{Kind: OpStore, Store: &StoreOp{DestPointer: destPointer, Source: source}}
}

func NewCall(location uint32) Opcode {
	return Opcode{Kind: OpCall, Call: &CallOp{Location: location}}
}

func NewReturn() Opcode {
	return Opcode{Kind: OpReturn}
}

func NewForeignCall(function string, destinations, inputs []ValueOrArray) Opcode {
	return Opcode{Kind: OpForeignCall, ForeignCall: &ForeignCallOp{Function: function, Destinations: destinations, Inputs: inputs}}
}

func NewBlackBox(fn blackbox.Func, inputBits uint32, input, output HeapArray) Opcode {
	return Opcode{Kind: OpBlackBox, BlackBox: &BlackBoxOp{Func: fn, InputBits: inputBits, Input: input, Output: output}}
}

func NewTrap(message string) Opcode {
	return Opcode{Kind: OpTrap, Trap: &TrapOp{Message: message}}
}

func NewStop() Opcode {
	return Opcode{Kind: OpStop}
}
