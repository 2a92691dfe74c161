package blackbox

import (
	"fmt"

	"github.com/acirlabs/acvm/field"
)

// Input is one concrete argument to a blackbox function: a field element plus
// the bit width declared for it by the circuit.
type Input struct {
	Value field.Element
	Bits  uint32
}

// Impl computes the outputs of one blackbox function. nbOutputs is the number
// of output slots declared by the calling opcode; implementations must check
// it together with the input arity.
type Impl func(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error)

// FunctionError reports a failed primitive: wrong arity, out-of-domain input,
// or an unsatisfied relation (e.g. a violated range check).
type FunctionError struct {
	Func   Func
	Reason string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("blackbox %s: %s", e.Func, e.Reason)
}

func failf(fn Func, format string, args ...interface{}) error {
	return &FunctionError{Func: fn, Reason: fmt.Sprintf(format, args...)}
}

// ErrUnknownFunction reports a function identifier missing from the registry.
// Unlike FunctionError this is a configuration error of the embedding host.
type ErrUnknownFunction struct {
	Func Func
}

func (e *ErrUnknownFunction) Error() string {
	return fmt.Sprintf("no implementation registered for blackbox function %s", e.Func)
}

// Registry is an immutable capability set mapping function identifiers to
// implementations. It is safe to share across concurrent solver instances.
type Registry struct {
	impls map[Func]Impl
}

// NewRegistry builds a registry from an explicit capability set.
func NewRegistry(impls map[Func]Impl) *Registry {
	m := make(map[Func]Impl, len(impls))
	for k, v := range impls {
		m[k] = v
	}
	return &Registry{impls: m}
}

// DefaultRegistry returns the full primitive set of this build.
func DefaultRegistry() *Registry {
	return NewRegistry(map[Func]Impl{
		AND:                  solveAnd,
		XOR:                  solveXor,
		Range:                solveRange,
		SHA256:               solveSha256,
		Blake2s:              solveBlake2s,
		Keccak256:            solveKeccak256,
		MiMC:                 solveMiMC,
		Poseidon2Permutation: solvePoseidon2,
		AES128Encrypt:        solveAes128,
		EcdsaSecp256k1:       solveEcdsaSecp256k1,
		EcdsaSecp256r1:       solveEcdsaSecp256r1,
		EmbeddedCurveAdd:     solveEmbeddedCurveAdd,
		EmbeddedCurveDouble:  solveEmbeddedCurveDouble,
		MultiScalarMul:       solveMultiScalarMul,
		FixedBaseScalarMul:   solveFixedBaseScalarMul,
	})
}

// Has reports whether fn is part of the capability set.
func (r *Registry) Has(fn Func) bool {
	_, ok := r.impls[fn]
	return ok
}

// Solve dispatches fn on concrete inputs and returns its outputs.
func (r *Registry) Solve(f field.Field, fn Func, inputs []Input, nbOutputs int) ([]field.Element, error) {
	impl, ok := r.impls[fn]
	if !ok {
		return nil, &ErrUnknownFunction{Func: fn}
	}
	return impl(f, inputs, nbOutputs)
}
