package brillig

import (
	"fmt"
	"math/big"

	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/field"
)

// Addresses must fit in 32 bits; anything larger is an out-of-bounds access.
const maxMemoryAddr = 1 << 32

type Status uint8

const (
	StatusInProgress Status = iota
	StatusFinished
	StatusTrapped
	StatusAwaitingForeignCall
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusFinished:
		return "finished"
	case StatusTrapped:
		return "trapped"
	case StatusAwaitingForeignCall:
		return "awaiting foreign call"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ForeignCallRequest is emitted when execution reaches a foreign-call
// instruction: a name and ordered scalar-or-array arguments for the host
// oracle.
type ForeignCallRequest struct {
	Function string
	Inputs   [][]field.Element
}

// ForeignCallResult carries the oracle answer back, one value group per
// destination operand.
type ForeignCallResult struct {
	Values [][]field.Element
}

// TrapError records why execution aborted: an explicit trap, a division by
// zero, or an out-of-bounds access.
type TrapError struct {
	PC     uint32
	Reason string
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap at instruction %d: %s", e.PC, e.Reason)
}

// VM executes one program. State lives for a single invocation and is
// discarded on return or trap; the only way to carry state across a
// suspension is the VM value itself, which the caller keeps while the foreign
// call is resolved.
type VM struct {
	f        field.Field
	registry *blackbox.Registry
	program  *Program

	pc        uint32
	registers []Value
	memory    []Value
	callStack []uint32

	status  Status
	pending *ForeignCallRequest
	trap    *TrapError
}

// New builds a VM with the input values loaded into the first registers and
// the given initial memory image.
func New(f field.Field, registry *blackbox.Registry, program *Program, inputs []Value, memory []Value) *VM {
	vm := &VM{
		f:        f,
		registry: registry,
		program:  program,
		memory:   append([]Value(nil), memory...),
	}
	vm.registers = append(vm.registers, inputs...)
	return vm
}

func (vm *VM) Status() Status                     { return vm.status }
func (vm *VM) TrapCause() *TrapError              { return vm.trap }
func (vm *VM) PendingForeignCall() *ForeignCallRequest { return vm.pending }

// Register returns the current value of register i.
func (vm *VM) Register(i RegisterIndex) Value {
	if int(i) >= len(vm.registers) {
		return Value{}
	}
	return vm.registers[i]
}

// Memory returns the backing memory slice. Callers must treat it as
// read-only.
func (vm *VM) Memory() []Value { return vm.memory }

func (vm *VM) setRegister(i RegisterIndex, v Value) {
	for int(i) >= len(vm.registers) {
		vm.registers = append(vm.registers, Value{})
	}
	vm.registers[i] = v
}

func (vm *VM) trapf(format string, args ...interface{}) Status {
	vm.trap = &TrapError{PC: vm.pc, Reason: fmt.Sprintf(format, args...)}
	vm.status = StatusTrapped
	return vm.status
}

// address resolves a register value to a memory address.
func (vm *VM) address(r RegisterIndex) (uint64, bool) {
	v, ok := vm.f.Uint64(vm.Register(r).El)
	if !ok || v >= maxMemoryAddr {
		return 0, false
	}
	return v, true
}

func (vm *VM) memRead(addr uint64) (Value, bool) {
	if addr >= maxMemoryAddr {
		return Value{}, false
	}
	if addr >= uint64(len(vm.memory)) {
		// zero-initialized
		return Value{}, true
	}
	return vm.memory[addr], true
}

func (vm *VM) memWrite(addr uint64, v Value) bool {
	if addr >= maxMemoryAddr {
		return false
	}
	for addr >= uint64(len(vm.memory)) {
		vm.memory = append(vm.memory, Value{})
	}
	vm.memory[addr] = v
	return true
}

func (vm *VM) jumpTo(location uint32) Status {
	if int(location) > len(vm.program.Opcodes) {
		return vm.trapf("jump target %d out of program bounds", location)
	}
	vm.pc = location
	return vm.status
}

// Run executes instructions until the program stops, traps or suspends on a
// foreign call.
func (vm *VM) Run() Status {
	for vm.status == StatusInProgress {
		vm.process()
	}
	return vm.status
}

// ResumeWithResult supplies the oracle answer for the pending foreign call
// and re-enables execution at the next instruction. Nothing else may have
// been mutated between suspension and resume.
func (vm *VM) ResumeWithResult(result ForeignCallResult) error {
	if vm.status != StatusAwaitingForeignCall {
		return fmt.Errorf("vm is not awaiting a foreign call (status %s)", vm.status)
	}
	op := vm.program.Opcodes[vm.pc].ForeignCall
	if len(result.Values) != len(op.Destinations) {
		return fmt.Errorf("foreign call %q returned %d value groups, expected %d", op.Function, len(result.Values), len(op.Destinations))
	}
	for i, dest := range op.Destinations {
		vals := result.Values[i]
		switch dest.Kind {
		case ScalarOperand:
			if len(vals) != 1 {
				return fmt.Errorf("foreign call %q destination %d expects a scalar, got %d values", op.Function, i, len(vals))
			}
			vm.setRegister(dest.Register, FieldValue(vals[0]))
		case ArrayOperand:
			if uint32(len(vals)) != dest.Array.Size {
				return fmt.Errorf("foreign call %q destination %d expects %d values, got %d", op.Function, i, dest.Array.Size, len(vals))
			}
			addr, ok := vm.address(dest.Array.Pointer)
			if !ok {
				return fmt.Errorf("foreign call %q destination %d has an invalid pointer", op.Function, i)
			}
			for j, v := range vals {
				if !vm.memWrite(addr+uint64(j), FieldValue(v)) {
					return fmt.Errorf("foreign call %q destination %d writes out of bounds", op.Function, i)
				}
			}
		}
	}
	vm.pending = nil
	vm.status = StatusInProgress
	vm.pc++
	return nil
}

// process executes the instruction under the program counter.
func (vm *VM) process() Status {
	if int(vm.pc) >= len(vm.program.Opcodes) {
		return vm.trapf("program counter %d past the last instruction", vm.pc)
	}
	op := vm.program.Opcodes[vm.pc]
	switch op.Kind {
	case OpBinaryField:
		return vm.processBinaryField(op.BinaryField)
	case OpBinaryInt:
		return vm.processBinaryInt(op.BinaryInt)
	case OpConst:
		vm.setRegister(op.Const.Dest, Value{Bits: op.Const.Bits, El: op.Const.Value})
	case OpMov:
		vm.setRegister(op.Mov.Dest, vm.Register(op.Mov.Src))
	case OpCast:
		v := vm.Register(op.Cast.Src)
		if op.Cast.Bits == FieldBits {
			vm.setRegister(op.Cast.Dest, FieldValue(v.El))
		} else {
			truncated := asInt(vm.f, v, op.Cast.Bits)
			vm.setRegister(op.Cast.Dest, Value{Bits: op.Cast.Bits, El: vm.f.FromInterface(truncated)})
		}
	case OpNot:
		if op.Not.Bits == FieldBits {
			return vm.trapf("bitwise not is undefined on field values")
		}
		v := asInt(vm.f, vm.Register(op.Not.Src), op.Not.Bits)
		mask := new(big.Int).Lsh(big.NewInt(1), uint(op.Not.Bits))
		mask.Sub(mask, big.NewInt(1))
		v.Xor(v, mask)
		vm.setRegister(op.Not.Dest, Value{Bits: op.Not.Bits, El: vm.f.FromInterface(v)})
	case OpJump:
		return vm.jumpTo(op.Jump.Location)
	case OpJumpIf:
		if !vm.Register(op.Jump.Condition).El.IsZero() {
			return vm.jumpTo(op.Jump.Location)
		}
	case OpJumpIfNot:
		if vm.Register(op.Jump.Condition).El.IsZero() {
			return vm.jumpTo(op.Jump.Location)
		}
	case OpLoad:
		addr, ok := vm.address(op.Load.SourcePointer)
		if !ok {
			return vm.trapf("load address out of bounds")
		}
		v, ok := vm.memRead(addr)
		if !ok {
			return vm.trapf("load address %d out of bounds", addr)
		}
		vm.setRegister(op.Load.Dest, v)
	case OpStore:
		addr, ok := vm.address(op.Store.DestPointer)
		if !ok {
			return vm.trapf("store address out of bounds")
		}
		if !vm.memWrite(addr, vm.Register(op.Store.Source)) {
			return vm.trapf("store address %d out of bounds", addr)
		}
	case OpCall:
		vm.callStack = append(vm.callStack, vm.pc+1)
		return vm.jumpTo(op.Call.Location)
	case OpReturn:
		if len(vm.callStack) == 0 {
			return vm.trapf("return with an empty call stack")
		}
		ret := vm.callStack[len(vm.callStack)-1]
		vm.callStack = vm.callStack[:len(vm.callStack)-1]
		return vm.jumpTo(ret)
	case OpForeignCall:
		return vm.processForeignCall(op.ForeignCall)
	case OpBlackBox:
		return vm.processBlackBox(op.BlackBox)
	case OpTrap:
		return vm.trapf("%s", op.Trap.Message)
	case OpStop:
		vm.status = StatusFinished
		return vm.status
	default:
		return vm.trapf("unknown opcode kind %d", op.Kind)
	}
	vm.pc++
	return vm.status
}

func (vm *VM) processBinaryField(op *BinaryFieldOp) Status {
	lhs := vm.Register(op.Lhs).El
	rhs := vm.Register(op.Rhs).El
	var res Value
	switch op.Op {
	case FieldAdd:
		res = FieldValue(vm.f.Add(lhs, rhs))
	case FieldSub:
		res = FieldValue(vm.f.Sub(lhs, rhs))
	case FieldMul:
		res = FieldValue(vm.f.Mul(lhs, rhs))
	case FieldDiv:
		inv, ok := vm.f.Inverse(rhs)
		if !ok {
			return vm.trapf("field division by zero")
		}
		res = FieldValue(vm.f.Mul(lhs, inv))
	case FieldEquals:
		res = Value{Bits: U1}
		if lhs == rhs {
			res.El = vm.f.One()
		}
	default:
		return vm.trapf("unknown binary field op %d", op.Op)
	}
	vm.setRegister(op.Dest, res)
	vm.pc++
	return vm.status
}

func (vm *VM) processBinaryInt(op *BinaryIntOp) Status {
	if op.Bits == FieldBits {
		return vm.trapf("integer op on field width")
	}
	lhs := asInt(vm.f, vm.Register(op.Lhs), op.Bits)
	rhs := asInt(vm.f, vm.Register(op.Rhs), op.Bits)
	mod := new(big.Int).Lsh(big.NewInt(1), uint(op.Bits))

	bit := func(b bool) Status {
		res := Value{Bits: U1}
		if b {
			res.El = vm.f.One()
		}
		vm.setRegister(op.Dest, res)
		vm.pc++
		return vm.status
	}

	res := new(big.Int)
	switch op.Op {
	case IntAdd:
		res.Add(lhs, rhs).Mod(res, mod)
	case IntSub:
		res.Sub(lhs, rhs).Mod(res, mod)
	case IntMul:
		res.Mul(lhs, rhs).Mod(res, mod)
	case IntDiv:
		if rhs.Sign() == 0 {
			return vm.trapf("integer division by zero")
		}
		res.Div(lhs, rhs)
	case IntMod:
		if rhs.Sign() == 0 {
			return vm.trapf("integer modulo by zero")
		}
		res.Mod(lhs, rhs)
	case IntAnd:
		res.And(lhs, rhs)
	case IntOr:
		res.Or(lhs, rhs)
	case IntXor:
		res.Xor(lhs, rhs)
	case IntShl:
		if !rhs.IsUint64() || rhs.Uint64() >= uint64(op.Bits) {
			// shifted out entirely
		} else {
			res.Lsh(lhs, uint(rhs.Uint64())).Mod(res, mod)
		}
	case IntShr:
		if !rhs.IsUint64() || rhs.Uint64() >= uint64(op.Bits) {
			// shifted out entirely
		} else {
			res.Rsh(lhs, uint(rhs.Uint64()))
		}
	case IntEquals:
		return bit(lhs.Cmp(rhs) == 0)
	case IntLessThan:
		return bit(lhs.Cmp(rhs) < 0)
	case IntLessThanEquals:
		return bit(lhs.Cmp(rhs) <= 0)
	default:
		return vm.trapf("unknown binary int op %d", op.Op)
	}
	vm.setRegister(op.Dest, Value{Bits: op.Bits, El: vm.f.FromInterface(res)})
	vm.pc++
	return vm.status
}

func (vm *VM) heapArray(arr HeapArray) ([]Value, bool) {
	addr, ok := vm.address(arr.Pointer)
	if !ok {
		return nil, false
	}
	vals := make([]Value, arr.Size)
	for i := range vals {
		v, ok := vm.memRead(addr + uint64(i))
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func (vm *VM) processForeignCall(op *ForeignCallOp) Status {
	inputs := make([][]field.Element, len(op.Inputs))
	for i, in := range op.Inputs {
		switch in.Kind {
		case ScalarOperand:
			inputs[i] = []field.Element{vm.Register(in.Register).El}
		case ArrayOperand:
			vals, ok := vm.heapArray(in.Array)
			if !ok {
				return vm.trapf("foreign call %q input %d out of bounds", op.Function, i)
			}
			els := make([]field.Element, len(vals))
			for j, v := range vals {
				els[j] = v.El
			}
			inputs[i] = els
		}
	}
	vm.pending = &ForeignCallRequest{Function: op.Function, Inputs: inputs}
	vm.status = StatusAwaitingForeignCall
	return vm.status
}

func (vm *VM) processBlackBox(op *BlackBoxOp) Status {
	vals, ok := vm.heapArray(op.Input)
	if !ok {
		return vm.trapf("blackbox %s input out of bounds", op.Func)
	}
	bits := op.InputBits
	if bits == 0 {
		bits = uint32(vm.f.FieldBitLen())
	}
	inputs := make([]blackbox.Input, len(vals))
	for i, v := range vals {
		inputs[i] = blackbox.Input{Value: v.El, Bits: bits}
	}
	out, err := vm.registry.Solve(vm.f, op.Func, inputs, int(op.Output.Size))
	if err != nil {
		return vm.trapf("blackbox %s: %v", op.Func, err)
	}
	addr, ok := vm.address(op.Output.Pointer)
	if !ok {
		return vm.trapf("blackbox %s output out of bounds", op.Func)
	}
	for i, el := range out {
		if !vm.memWrite(addr+uint64(i), FieldValue(el)) {
			return vm.trapf("blackbox %s output out of bounds", op.Func)
		}
	}
	vm.pc++
	return vm.status
}
