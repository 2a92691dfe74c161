// Package solver materializes a complete witness for a circuit: it iterates
// the opcodes, solving each once enough inputs are known, delegating blackbox
// and bytecode opcodes, until the witness is complete or solving stalls.
package solver

import (
	"fmt"
	"strings"

	"github.com/acirlabs/acvm/acir"
)

// ErrorKind classifies fatal solving failures.
type ErrorKind uint8

const (
	// ErrUnsatisfiedConstraint: a fully-known assert-zero expression is
	// nonzero.
	ErrUnsatisfiedConstraint ErrorKind = iota
	// ErrUnresolvedWitness: a full pass made no progress while opcodes
	// remain.
	ErrUnresolvedWitness
	// ErrBlackboxFunction: wrong arity, out-of-domain input or primitive
	// failure.
	ErrBlackboxFunction
	// ErrBrilligTrap: bytecode execution aborted with a recorded reason.
	ErrBrilligTrap
	// ErrMemoryOutOfBounds: a memory opcode addressed a block outside its
	// initialized range, or re-initialized a block.
	ErrMemoryOutOfBounds
	// ErrMalformedCircuit: an opcode cannot be interpreted at all, e.g. a
	// memory read whose value is not a single witness.
	ErrMalformedCircuit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnsatisfiedConstraint:
		return "unsatisfied constraint"
	case ErrUnresolvedWitness:
		return "unresolved witness"
	case ErrBlackboxFunction:
		return "blackbox function error"
	case ErrBrilligTrap:
		return "brillig trap"
	case ErrMemoryOutOfBounds:
		return "memory out of bounds"
	case ErrMalformedCircuit:
		return "malformed circuit"
	default:
		return fmt.Sprintf("error(%d)", uint8(k))
	}
}

// OpcodeResolutionError is a fatal solving failure. It identifies the
// offending opcode and the witnesses involved so that downstream diagnostics
// can translate it back to source locations.
type OpcodeResolutionError struct {
	Kind        ErrorKind
	OpcodeIndex int
	Witnesses   []acir.Witness
	Message     string
	Err         error
}

func (e *OpcodeResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at opcode %d", e.Kind, e.OpcodeIndex)
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if len(e.Witnesses) > 0 {
		fmt.Fprintf(&sb, " (witnesses %v)", e.Witnesses)
	}
	return sb.String()
}

func (e *OpcodeResolutionError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, opcodeIndex int, msg string) *OpcodeResolutionError {
	return &OpcodeResolutionError{Kind: kind, OpcodeIndex: opcodeIndex, Message: msg}
}
