package solver

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/logger"
)

type Status uint8

const (
	StatusInProgress Status = iota
	// StatusSolved: the witness map is complete.
	StatusSolved
	// StatusFailed: a fatal error occurred, available via Err.
	StatusFailed
	// StatusRequiresForeignCall: execution is suspended awaiting an oracle
	// result; supply it via ResolvePendingForeignCall and call Solve again.
	StatusRequiresForeignCall
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusSolved:
		return "solved"
	case StatusFailed:
		return "failed"
	case StatusRequiresForeignCall:
		return "requires foreign call"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

type attemptResult uint8

const (
	attSolved attemptResult = iota
	attPending
	attForeignWait
)

// pendingBrillig is the persisted state of a bytecode call suspended on a
// foreign call: the VM snapshot plus the opcode it belongs to.
type pendingBrillig struct {
	opcodeIndex int
	call        *acir.BrilligCall
	vm          *brillig.VM
}

type config struct {
	registry *blackbox.Registry
	log      zerolog.Logger
}

type Option func(*config)

// WithBlackBoxRegistry overrides the primitive capability set.
func WithBlackBoxRegistry(r *blackbox.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger overrides the solver logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// ACVM solves one circuit. It owns the witness map and all per-solve state;
// a single goroutine drives it. Independent circuits are solved by
// independent ACVM instances.
type ACVM struct {
	f        field.Field
	circuit  *acir.Circuit
	programs map[uint32]*brillig.Program
	registry *blackbox.Registry

	witness  *WitnessMap
	blocks   map[acir.BlockID]*MemoryBlock
	solved   *bitset.BitSet
	nbSolved int
	pending  *pendingBrillig

	status Status
	err    *OpcodeResolutionError
	log    zerolog.Logger
}

// New builds a solver instance over an immutable circuit and bytecode table.
// The initial witness map is copied. Unknown blackbox identifiers are a
// configuration error and rejected here, before any solving happens.
func New(f field.Field, circuit *acir.Circuit, programs map[uint32]*brillig.Program, initial *WitnessMap, opts ...Option) (*ACVM, error) {
	cfg := &config{
		registry: blackbox.DefaultRegistry(),
		log:      logger.Logger().With().Str("component", "solver").Logger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	for i, op := range circuit.Opcodes {
		switch op.Kind {
		case acir.KindBlackBoxFuncCall:
			if !cfg.registry.Has(op.BlackBox.Func) {
				return nil, fmt.Errorf("opcode %d: %w", i, &blackbox.ErrUnknownFunction{Func: op.BlackBox.Func})
			}
		case acir.KindBrilligCall:
			if _, ok := programs[op.Brillig.ID]; !ok {
				return nil, fmt.Errorf("opcode %d: bytecode program %d not in table", i, op.Brillig.ID)
			}
		}
	}
	witness := NewWitnessMap()
	if initial != nil {
		witness = initial.Clone()
	}
	return &ACVM{
		f:        f,
		circuit:  circuit,
		programs: programs,
		registry: cfg.registry,
		witness:  witness,
		blocks:   make(map[acir.BlockID]*MemoryBlock),
		solved:   bitset.New(uint(len(circuit.Opcodes))),
		log:      cfg.log,
	}, nil
}

func (a *ACVM) Status() Status { return a.status }

// WitnessMap returns the solver-owned witness map. Read it only after the
// solve finished.
func (a *ACVM) WitnessMap() *WitnessMap { return a.witness }

// Err returns the fatal error after StatusFailed.
func (a *ACVM) Err() error {
	if a.err == nil {
		return nil
	}
	return a.err
}

// PendingForeignCall returns the request the solve is suspended on, if any.
func (a *ACVM) PendingForeignCall() *brillig.ForeignCallRequest {
	if a.pending == nil {
		return nil
	}
	return a.pending.vm.PendingForeignCall()
}

// ResolvePendingForeignCall supplies the oracle result for the pending
// request. The next Solve call resumes the suspended bytecode exactly where
// it stopped.
func (a *ACVM) ResolvePendingForeignCall(result brillig.ForeignCallResult) error {
	if a.pending == nil {
		return fmt.Errorf("no foreign call is pending")
	}
	if err := a.pending.vm.ResumeWithResult(result); err != nil {
		return err
	}
	a.status = StatusInProgress
	return nil
}

func (a *ACVM) get(w acir.Witness) (field.Element, bool) {
	return a.witness.Get(w)
}

func (a *ACVM) fail(err *OpcodeResolutionError) Status {
	a.err = err
	a.status = StatusFailed
	a.log.Debug().Err(err).Msg("solving failed")
	return a.status
}

func (a *ACVM) markSolved(idx int) {
	a.solved.Set(uint(idx))
	a.nbSolved++
}

// Solve runs passes over the unsolved opcodes until the work set empties, a
// fatal error occurs, or a bytecode call suspends on a foreign call.
func (a *ACVM) Solve() Status {
	switch a.status {
	case StatusSolved, StatusFailed:
		return a.status
	case StatusRequiresForeignCall:
		// resolve before calling again
		if a.pending.vm.Status() == brillig.StatusAwaitingForeignCall {
			return a.status
		}
	}

	if a.pending != nil {
		p := a.pending
		a.pending = nil
		res, err := a.runBrillig(p.opcodeIndex, p.call, p.vm)
		switch {
		case err != nil:
			return a.fail(err)
		case res == attForeignWait:
			a.status = StatusRequiresForeignCall
			return a.status
		}
		a.markSolved(p.opcodeIndex)
	}

	for {
		if a.nbSolved == len(a.circuit.Opcodes) {
			a.status = StatusSolved
			a.log.Debug().Int("witnesses", a.witness.Len()).Msg("circuit solved")
			return a.status
		}
		progress := false
		for i := range a.circuit.Opcodes {
			if a.solved.Test(uint(i)) {
				continue
			}
			res, err := a.attempt(i)
			switch {
			case err != nil:
				return a.fail(err)
			case res == attSolved:
				a.markSolved(i)
				progress = true
			case res == attForeignWait:
				a.status = StatusRequiresForeignCall
				return a.status
			}
		}
		if !progress {
			return a.fail(&OpcodeResolutionError{
				Kind:        ErrUnresolvedWitness,
				OpcodeIndex: a.firstUnsolved(),
				Witnesses:   a.unknownWitnesses(),
				Message:     fmt.Sprintf("no progress with %d opcodes remaining", len(a.circuit.Opcodes)-a.nbSolved),
			})
		}
	}
}

func (a *ACVM) firstUnsolved() int {
	for i := range a.circuit.Opcodes {
		if !a.solved.Test(uint(i)) {
			return i
		}
	}
	return -1
}

// unknownWitnesses collects the unassigned witnesses referenced by unsolved
// opcodes, for diagnostics.
func (a *ACVM) unknownWitnesses() []acir.Witness {
	seen := make(map[acir.Witness]bool)
	var res []acir.Witness
	add := func(w acir.Witness) {
		if _, known := a.get(w); !known && !seen[w] {
			seen[w] = true
			res = append(res, w)
		}
	}
	addExpr := func(e *acir.Expression) {
		if e == nil {
			return
		}
		for _, w := range e.Witnesses() {
			add(w)
		}
	}
	for i := range a.circuit.Opcodes {
		if a.solved.Test(uint(i)) {
			continue
		}
		op := a.circuit.Opcodes[i]
		switch op.Kind {
		case acir.KindAssertZero:
			addExpr(op.AssertZero)
		case acir.KindBlackBoxFuncCall:
			for _, in := range op.BlackBox.Inputs {
				if !in.IsConst {
					add(in.W)
				}
			}
		case acir.KindBrilligCall:
			for _, in := range op.Brillig.Inputs {
				addExpr(in.Single)
				for _, e := range in.Array {
					addExpr(e)
				}
			}
			addExpr(op.Brillig.Predicate)
		case acir.KindMemoryInit:
			for _, w := range op.MemInit.Init {
				add(w)
			}
		case acir.KindMemoryOp:
			addExpr(&op.MemOp.Index)
			addExpr(&op.MemOp.Value)
		}
	}
	return res
}

// attempt tries to solve one opcode in the current pass.
func (a *ACVM) attempt(idx int) (attemptResult, *OpcodeResolutionError) {
	op := a.circuit.Opcodes[idx]
	switch op.Kind {
	case acir.KindAssertZero:
		return a.attemptAssertZero(idx, op.AssertZero)
	case acir.KindBlackBoxFuncCall:
		return a.attemptBlackBox(idx, op.BlackBox)
	case acir.KindBrilligCall:
		return a.attemptBrillig(idx, op.Brillig)
	case acir.KindMemoryInit:
		return a.attemptMemoryInit(idx, op.MemInit)
	case acir.KindMemoryOp:
		return a.attemptMemoryOp(idx, op.MemOp)
	default:
		return attPending, newError(ErrMalformedCircuit, idx, fmt.Sprintf("unknown opcode kind %d", op.Kind))
	}
}

// attemptAssertZero folds the expression under the known witnesses. Fully
// known: the value must be exactly zero. Exactly one unknown appearing
// linearly: solve for it by dividing by its net coefficient.
func (a *ACVM) attemptAssertZero(idx int, e *acir.Expression) (attemptResult, *OpcodeResolutionError) {
	r := reduce(a.f, e, a.get)
	if r.blocked || r.nbUnknown > 1 {
		return attPending, nil
	}
	if r.nbUnknown == 0 {
		if !r.constant.IsZero() {
			return attPending, &OpcodeResolutionError{
				Kind:        ErrUnsatisfiedConstraint,
				OpcodeIndex: idx,
				Witnesses:   e.Witnesses(),
				Message:     fmt.Sprintf("expression evaluates to %s", a.f.String(r.constant)),
			}
		}
		return attSolved, nil
	}
	inv, ok := a.f.Inverse(r.coeff)
	if !ok {
		// the unknown vanished; the remaining constant decides
		if !r.constant.IsZero() {
			return attPending, &OpcodeResolutionError{
				Kind:        ErrUnsatisfiedConstraint,
				OpcodeIndex: idx,
				Witnesses:   e.Witnesses(),
				Message:     fmt.Sprintf("witness %d has zero coefficient and the remainder is %s", r.unknown, a.f.String(r.constant)),
			}
		}
		return attPending, nil
	}
	v := a.f.Mul(a.f.Neg(r.constant), inv)
	if err := a.witness.Assign(r.unknown, v); err != nil {
		return attPending, newError(ErrUnsatisfiedConstraint, idx, err.Error())
	}
	return attSolved, nil
}

func (a *ACVM) attemptBlackBox(idx int, call *acir.BlackBoxFuncCall) (attemptResult, *OpcodeResolutionError) {
	inputs := make([]blackbox.Input, len(call.Inputs))
	for i, in := range call.Inputs {
		if in.IsConst {
			inputs[i] = blackbox.Input{Value: in.Constant, Bits: in.Bits}
			continue
		}
		v, ok := a.get(in.W)
		if !ok {
			return attPending, nil
		}
		inputs[i] = blackbox.Input{Value: v, Bits: in.Bits}
	}
	out, err := a.registry.Solve(a.f, call.Func, inputs, len(call.Outputs))
	if err != nil {
		return attPending, &OpcodeResolutionError{
			Kind:        ErrBlackboxFunction,
			OpcodeIndex: idx,
			Witnesses:   call.Outputs,
			Err:         err,
		}
	}
	if len(out) != len(call.Outputs) {
		return attPending, newError(ErrBlackboxFunction, idx,
			fmt.Sprintf("%s returned %d outputs, %d declared", call.Func, len(out), len(call.Outputs)))
	}
	for i, w := range call.Outputs {
		if err := a.witness.Assign(w, out[i]); err != nil {
			return attPending, newError(ErrUnsatisfiedConstraint, idx, err.Error())
		}
	}
	return attSolved, nil
}

func (a *ACVM) attemptMemoryInit(idx int, init *acir.MemoryInit) (attemptResult, *OpcodeResolutionError) {
	if _, ok := a.blocks[init.Block]; ok {
		return attPending, newError(ErrMalformedCircuit, idx, fmt.Sprintf("memory block %d initialized twice", init.Block))
	}
	values := make([]field.Element, len(init.Init))
	for i, w := range init.Init {
		v, ok := a.get(w)
		if !ok {
			return attPending, nil
		}
		values[i] = v
	}
	a.blocks[init.Block] = newMemoryBlock(values)
	return attSolved, nil
}

func (a *ACVM) attemptMemoryOp(idx int, op *acir.MemoryOp) (attemptResult, *OpcodeResolutionError) {
	block, ok := a.blocks[op.Block]
	if !ok {
		// init not solved yet
		return attPending, nil
	}
	iv, known := op.Index.Evaluate(a.f, a.get)
	if !known {
		return attPending, nil
	}
	addr, ok := a.f.Uint64(iv)
	if !ok || addr >= uint64(block.Len()) {
		return attPending, &OpcodeResolutionError{
			Kind:        ErrMemoryOutOfBounds,
			OpcodeIndex: idx,
			Witnesses:   op.Index.Witnesses(),
			Message:     fmt.Sprintf("address %s outside block %d of length %d", a.f.String(iv), op.Block, block.Len()),
		}
	}
	switch op.Op {
	case acir.MemRead:
		w, ok := op.Value.ToWitness(a.f)
		if !ok {
			return attPending, newError(ErrMalformedCircuit, idx, "memory read value is not a single witness")
		}
		v, _ := block.Read(addr)
		if err := a.witness.Assign(w, v); err != nil {
			return attPending, newError(ErrUnsatisfiedConstraint, idx, err.Error())
		}
	case acir.MemWrite:
		v, known := op.Value.Evaluate(a.f, a.get)
		if !known {
			return attPending, nil
		}
		block.Write(addr, v)
	default:
		return attPending, newError(ErrMalformedCircuit, idx, fmt.Sprintf("unknown memory op %d", op.Op))
	}
	return attSolved, nil
}

func (a *ACVM) attemptBrillig(idx int, call *acir.BrilligCall) (attemptResult, *OpcodeResolutionError) {
	if call.Predicate != nil {
		pv, known := call.Predicate.Evaluate(a.f, a.get)
		if !known {
			return attPending, nil
		}
		if pv.IsZero() {
			// disabled call: outputs are zeroed, the interpreter never runs
			if err := a.zeroOutputs(idx, call); err != nil {
				return attPending, err
			}
			return attSolved, nil
		}
	}

	var inputs []brillig.Value
	var memory []brillig.Value
	for _, in := range call.Inputs {
		switch in.Kind {
		case acir.BrilligInputSingle:
			v, known := in.Single.Evaluate(a.f, a.get)
			if !known {
				return attPending, nil
			}
			inputs = append(inputs, brillig.FieldValue(v))
		case acir.BrilligInputArray:
			ptr := len(memory)
			for _, e := range in.Array {
				v, known := e.Evaluate(a.f, a.get)
				if !known {
					return attPending, nil
				}
				memory = append(memory, brillig.FieldValue(v))
			}
			inputs = append(inputs, brillig.IntValue(a.f, brillig.U32, uint64(ptr)))
		}
	}

	vm := brillig.New(a.f, a.registry, a.programs[call.ID], inputs, memory)
	return a.runBrillig(idx, call, vm)
}

func (a *ACVM) runBrillig(idx int, call *acir.BrilligCall, vm *brillig.VM) (attemptResult, *OpcodeResolutionError) {
	switch vm.Run() {
	case brillig.StatusAwaitingForeignCall:
		a.pending = &pendingBrillig{opcodeIndex: idx, call: call, vm: vm}
		a.log.Debug().Int("opcode", idx).Str("function", vm.PendingForeignCall().Function).Msg("suspended on foreign call")
		return attForeignWait, nil
	case brillig.StatusTrapped:
		trap := vm.TrapCause()
		return attPending, &OpcodeResolutionError{
			Kind:        ErrBrilligTrap,
			OpcodeIndex: idx,
			Witnesses:   brilligOutputWitnesses(call),
			Message:     fmt.Sprintf("program %d", call.ID),
			Err:         trap,
		}
	case brillig.StatusFinished:
		return attSolved, a.writeBrilligOutputs(idx, call, vm)
	default:
		return attPending, newError(ErrMalformedCircuit, idx, "interpreter stopped in an unexpected state")
	}
}

// Bytecode results occupy the registers following the inputs: output j lives
// in register len(inputs)+j, holding the value itself or the array pointer.
func (a *ACVM) writeBrilligOutputs(idx int, call *acir.BrilligCall, vm *brillig.VM) *OpcodeResolutionError {
	assign := func(w acir.Witness, v field.Element) *OpcodeResolutionError {
		if err := a.witness.Assign(w, v); err != nil {
			return newError(ErrUnsatisfiedConstraint, idx, err.Error())
		}
		return nil
	}
	mem := vm.Memory()
	base := brillig.RegisterIndex(len(call.Inputs))
	for j, out := range call.Outputs {
		reg := vm.Register(base + brillig.RegisterIndex(j))
		switch out.Kind {
		case acir.BrilligOutputSimple:
			if err := assign(out.Simple, reg.El); err != nil {
				return err
			}
		case acir.BrilligOutputArray:
			addr, ok := a.f.Uint64(reg.El)
			if !ok {
				return newError(ErrMalformedCircuit, idx, fmt.Sprintf("output %d array pointer is not an address", j))
			}
			for k, w := range out.Array {
				var v field.Element
				if p := addr + uint64(k); p < uint64(len(mem)) {
					v = mem[p].El
				}
				if err := assign(w, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *ACVM) zeroOutputs(idx int, call *acir.BrilligCall) *OpcodeResolutionError {
	var zero field.Element
	for _, out := range call.Outputs {
		switch out.Kind {
		case acir.BrilligOutputSimple:
			if err := a.witness.Assign(out.Simple, zero); err != nil {
				return newError(ErrUnsatisfiedConstraint, idx, err.Error())
			}
		case acir.BrilligOutputArray:
			for _, w := range out.Array {
				if err := a.witness.Assign(w, zero); err != nil {
					return newError(ErrUnsatisfiedConstraint, idx, err.Error())
				}
			}
		}
	}
	return nil
}

func brilligOutputWitnesses(call *acir.BrilligCall) []acir.Witness {
	var res []acir.Witness
	for _, out := range call.Outputs {
		switch out.Kind {
		case acir.BrilligOutputSimple:
			res = append(res, out.Simple)
		case acir.BrilligOutputArray:
			res = append(res, out.Array...)
		}
	}
	return res
}
