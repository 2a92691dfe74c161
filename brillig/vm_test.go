package brillig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/field"
)

func runProgram(t *testing.T, opcodes []Opcode, inputs, memory []Value) *VM {
	t.Helper()
	f := field.BN254()
	vm := New(f, blackbox.DefaultRegistry(), &Program{Opcodes: opcodes}, inputs, memory)
	vm.Run()
	return vm
}

func fieldInputs(f field.Field, values ...uint64) []Value {
	res := make([]Value, len(values))
	for i, v := range values {
		res[i] = FieldValue(f.FromInterface(v))
	}
	return res
}

func requireRegister(t *testing.T, vm *VM, i RegisterIndex, expected uint64) {
	t.Helper()
	f := field.BN254()
	v, ok := f.Uint64(vm.Register(i).El)
	require.True(t, ok)
	require.Equal(t, expected, v)
}

func TestDivisionWithRemainder(t *testing.T) {
	f := field.BN254()
	// r2 = r0 / r1, r3 = r0 mod r1, then recompose r4 = r2*r1 + r3
	program := []Opcode{
		NewBinaryIntOp(IntDiv, U32, 0, 1, 2),
		NewBinaryIntOp(IntMod, U32, 0, 1, 3),
		NewBinaryIntOp(IntMul, U32, 2, 1, 4),
		NewBinaryIntOp(IntAdd, U32, 4, 3, 4),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 7, 2), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, 3)
	requireRegister(t, vm, 3, 1)
	requireRegister(t, vm, 4, 7)
}

func TestIntegerDivisionByZeroTraps(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryIntOp(IntDiv, U32, 0, 1, 2),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 7, 0), nil)
	require.Equal(t, StatusTrapped, vm.Status())
	require.NotNil(t, vm.TrapCause())
	require.Equal(t, uint32(0), vm.TrapCause().PC)
	require.Contains(t, vm.TrapCause().Reason, "division by zero")
}

func TestFieldDivisionByZeroTraps(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryFieldOp(FieldDiv, 0, 1, 2),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 7, 0), nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestFieldArithmetic(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryFieldOp(FieldAdd, 0, 1, 2),
		NewBinaryFieldOp(FieldMul, 0, 1, 3),
		NewBinaryFieldOp(FieldSub, 0, 1, 4),
		NewBinaryFieldOp(FieldDiv, 0, 1, 5),
		NewBinaryFieldOp(FieldEquals, 0, 1, 6),
		NewBinaryFieldOp(FieldEquals, 0, 0, 7),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 12, 4), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, 16)
	requireRegister(t, vm, 3, 48)
	requireRegister(t, vm, 4, 8)
	requireRegister(t, vm, 5, 3)
	requireRegister(t, vm, 6, 0)
	requireRegister(t, vm, 7, 1)
}

func TestLoop(t *testing.T) {
	f := field.BN254()
	// sum n down to 1 into r1
	program := []Opcode{
		NewConst(1, U32, field.Element{}),
		NewConst(2, U32, f.One()),
		NewJumpIfNot(0, 6),
		NewBinaryIntOp(IntAdd, U32, 1, 0, 1),
		NewBinaryIntOp(IntSub, U32, 0, 2, 0),
		NewJump(2),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 5), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 1, 15)
}

func TestCallAndReturn(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewCall(2),
		NewStop(),
		NewConst(0, FieldBits, f.FromInterface(uint64(42))),
		NewReturn(),
	}
	vm := runProgram(t, program, nil, nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 0, 42)
}

func TestReturnWithEmptyStackTraps(t *testing.T) {
	vm := runProgram(t, []Opcode{NewReturn()}, nil, nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestRunningPastLastInstructionTraps(t *testing.T) {
	f := field.BN254()
	vm := runProgram(t, []Opcode{NewConst(0, FieldBits, f.One())}, nil, nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestJumpOutOfBoundsTraps(t *testing.T) {
	vm := runProgram(t, []Opcode{NewJump(100)}, nil, nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestLoadStore(t *testing.T) {
	f := field.BN254()
	// store r1 at *r0, then load it back into r2
	program := []Opcode{
		NewConst(0, U32, f.FromInterface(uint64(7))),
		NewConst(1, FieldBits, f.FromInterface(uint64(99))),
		NewStore(0, 1),
		NewLoad(2, 0),
		NewStop(),
	}
	vm := runProgram(t, program, nil, nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, 99)
	// memory auto-grew to hold address 7
	require.Len(t, vm.Memory(), 8)
}

func TestLoadBeyondMemoryReadsZero(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewConst(0, U32, f.FromInterface(uint64(1000))),
		NewLoad(1, 0),
		NewStop(),
	}
	vm := runProgram(t, program, nil, nil)
	require.Equal(t, StatusFinished, vm.Status())
	require.True(t, vm.Register(1).El.IsZero())
}

func TestAddressBeyondCapTraps(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewConst(0, FieldBits, f.FromInterface(uint64(1)<<33)),
		NewLoad(1, 0),
		NewStop(),
	}
	vm := runProgram(t, program, nil, nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestCastTruncates(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewCast(1, 0, U8),
		NewCast(2, 1, FieldBits),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 258), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 1, 2)
	require.Equal(t, U8, vm.Register(1).Bits)
	requireRegister(t, vm, 2, 2)
	require.Equal(t, FieldBits, vm.Register(2).Bits)
}

func TestNot(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewNot(1, 0, U8),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 0b1010), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 1, 0b11110101)
}

func TestNotOnFieldTraps(t *testing.T) {
	f := field.BN254()
	vm := runProgram(t, []Opcode{NewNot(1, 0, FieldBits), NewStop()}, fieldInputs(f, 1), nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestIntegerOpOnFieldWidthTraps(t *testing.T) {
	f := field.BN254()
	vm := runProgram(t, []Opcode{NewBinaryIntOp(IntAdd, FieldBits, 0, 1, 2), NewStop()}, fieldInputs(f, 1, 2), nil)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestIntegerOverflowWraps(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryIntOp(IntAdd, U8, 0, 1, 2),
		NewBinaryIntOp(IntMul, U8, 0, 1, 3),
		NewBinaryIntOp(IntSub, U8, 4, 0, 5),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 200, 100, 0, 0, 0), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, (200+100)%256)
	requireRegister(t, vm, 3, (200*100)%256)
	requireRegister(t, vm, 5, 256-200)
}

func TestShifts(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryIntOp(IntShl, U32, 0, 1, 2),
		NewBinaryIntOp(IntShr, U32, 0, 1, 3),
		NewBinaryIntOp(IntShl, U32, 0, 4, 5),
		NewBinaryIntOp(IntShr, U32, 0, 4, 6),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 0b1100, 2, 0, 0, 32), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, 0b110000)
	requireRegister(t, vm, 3, 0b11)
	// a shift by the full width clears the value
	requireRegister(t, vm, 5, 0)
	requireRegister(t, vm, 6, 0)
}

func TestComparisons(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewBinaryIntOp(IntLessThan, U32, 0, 1, 2),
		NewBinaryIntOp(IntLessThan, U32, 1, 0, 3),
		NewBinaryIntOp(IntLessThanEquals, U32, 0, 0, 4),
		NewBinaryIntOp(IntEquals, U32, 0, 1, 5),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 3, 5), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 2, 1)
	requireRegister(t, vm, 3, 0)
	requireRegister(t, vm, 4, 1)
	requireRegister(t, vm, 5, 0)
}

func TestTrapOpcode(t *testing.T) {
	vm := runProgram(t, []Opcode{NewTrap("assertion failed")}, nil, nil)
	require.Equal(t, StatusTrapped, vm.Status())
	require.Equal(t, "assertion failed", vm.TrapCause().Reason)
	require.EqualError(t, vm.TrapCause(), "trap at instruction 0: assertion failed")
}

func TestForeignCallSuspendResume(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewConst(0, U32, f.FromInterface(uint64(10))),
		NewConst(2, FieldBits, f.FromInterface(uint64(5))),
		NewForeignCall("oracle",
			[]ValueOrArray{
				{Kind: ScalarOperand, Register: 1},
				{Kind: ArrayOperand, Array: HeapArray{Pointer: 0, Size: 2}},
			},
			[]ValueOrArray{{Kind: ScalarOperand, Register: 2}},
		),
		NewStop(),
	}
	vm := New(f, blackbox.DefaultRegistry(), &Program{Opcodes: program}, nil, nil)
	require.Equal(t, StatusAwaitingForeignCall, vm.Run())

	req := vm.PendingForeignCall()
	require.NotNil(t, req)
	require.Equal(t, "oracle", req.Function)
	require.Equal(t, [][]field.Element{{f.FromInterface(uint64(5))}}, req.Inputs)

	err := vm.ResumeWithResult(ForeignCallResult{Values: [][]field.Element{
		{f.FromInterface(uint64(9))},
		{f.FromInterface(uint64(7)), f.FromInterface(uint64(8))},
	}})
	require.NoError(t, err)
	require.Equal(t, StatusFinished, vm.Run())

	requireRegister(t, vm, 1, 9)
	mem := vm.Memory()
	require.Equal(t, f.FromInterface(uint64(7)), mem[10].El)
	require.Equal(t, f.FromInterface(uint64(8)), mem[11].El)
}

func TestResumeValidatesShapes(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewForeignCall("oracle",
			[]ValueOrArray{{Kind: ScalarOperand, Register: 0}},
			nil,
		),
		NewStop(),
	}
	vm := New(f, blackbox.DefaultRegistry(), &Program{Opcodes: program}, nil, nil)
	require.Equal(t, StatusAwaitingForeignCall, vm.Run())

	// wrong number of value groups
	err := vm.ResumeWithResult(ForeignCallResult{})
	require.Error(t, err)

	// scalar destination with two values
	err = vm.ResumeWithResult(ForeignCallResult{Values: [][]field.Element{{f.One(), f.One()}}})
	require.Error(t, err)

	// still resumable with the right shape
	err = vm.ResumeWithResult(ForeignCallResult{Values: [][]field.Element{{f.One()}}})
	require.NoError(t, err)
	require.Equal(t, StatusFinished, vm.Run())
}

func TestResumeWhenNotAwaitingFails(t *testing.T) {
	f := field.BN254()
	vm := New(f, blackbox.DefaultRegistry(), &Program{Opcodes: []Opcode{NewStop()}}, nil, nil)
	require.Error(t, vm.ResumeWithResult(ForeignCallResult{}))
}

func TestBlackBoxOpcode(t *testing.T) {
	f := field.BN254()
	memory := fieldInputs(f, 'a', 'b', 'c')
	program := []Opcode{
		NewConst(0, U32, field.Element{}),
		NewConst(1, U32, f.FromInterface(uint64(10))),
		NewBlackBox(blackbox.SHA256, 8,
			HeapArray{Pointer: 0, Size: 3},
			HeapArray{Pointer: 1, Size: 32}),
		NewStop(),
	}
	vm := runProgram(t, program, nil, memory)
	require.Equal(t, StatusFinished, vm.Status())
	// sha256("abc") starts with 0xba
	mem := vm.Memory()
	require.Equal(t, f.FromInterface(uint64(0xba)), mem[10].El)
	require.Len(t, mem, 42)
}

func TestBlackBoxFailureTraps(t *testing.T) {
	f := field.BN254()
	// range over a value that does not fit traps the vm
	memory := fieldInputs(f, 300)
	program := []Opcode{
		NewConst(0, U32, field.Element{}),
		NewBlackBox(blackbox.Range, 8,
			HeapArray{Pointer: 0, Size: 1},
			HeapArray{Size: 0}),
		NewStop(),
	}
	vm := runProgram(t, program, nil, memory)
	require.Equal(t, StatusTrapped, vm.Status())
}

func TestMovAndRegisterGrowth(t *testing.T) {
	f := field.BN254()
	program := []Opcode{
		NewMov(50, 0),
		NewStop(),
	}
	vm := runProgram(t, program, fieldInputs(f, 11), nil)
	require.Equal(t, StatusFinished, vm.Status())
	requireRegister(t, vm, 50, 11)
	// reading an untouched register yields the zero value
	require.True(t, vm.Register(1000).El.IsZero())
}
