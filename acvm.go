// Package acvm executes compiled circuits: it drives the witness solver, the
// bytecode interpreter and the blackbox primitive layer to materialize a
// complete, constraint-satisfying witness from a partial one.
package acvm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/logger"
	"github.com/acirlabs/acvm/solver"
)

// ForeignCallHandler resolves one oracle request: a call name and ordered
// argument groups, answered with one value group per declared destination.
type ForeignCallHandler func(name string, inputs [][]field.Element) ([][]field.Element, error)

type config struct {
	registry *blackbox.Registry
	handler  ForeignCallHandler
	log      zerolog.Logger
}

type Option func(*config)

// WithBlackBoxRegistry overrides the default primitive capability set.
func WithBlackBoxRegistry(r *blackbox.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithForeignCallHandler sets the host oracle.
func WithForeignCallHandler(h ForeignCallHandler) Option {
	return func(c *config) { c.handler = h }
}

// WithLogger overrides the logger used by the solve.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// DefaultForeignCallHandler serves the calls every toolchain build provides:
// "print" logs its arguments and returns nothing. Anything else is an error.
func DefaultForeignCallHandler(name string, inputs [][]field.Element) ([][]field.Element, error) {
	switch name {
	case "print":
		f := field.BN254()
		args := make([]string, 0, len(inputs))
		for _, group := range inputs {
			for _, el := range group {
				args = append(args, f.String(el))
			}
		}
		log := logger.Logger()
		log.Info().Strs("args", args).Msg("print")
		return make([][]field.Element, 0), nil
	default:
		return nil, fmt.Errorf("unknown foreign call %q", name)
	}
}

// Solve produces the complete witness for circuit, given the bytecode table
// and the initial witness values. Foreign calls are resolved through the
// configured handler; everything else is solved in-process.
func Solve(f field.Field, circuit *acir.Circuit, programs map[uint32]*brillig.Program, initial *solver.WitnessMap, opts ...Option) (*solver.WitnessMap, error) {
	cfg := &config{
		registry: blackbox.DefaultRegistry(),
		handler:  DefaultForeignCallHandler,
		log:      logger.Logger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	vm, err := solver.New(f, circuit, programs, initial,
		solver.WithBlackBoxRegistry(cfg.registry),
		solver.WithLogger(cfg.log))
	if err != nil {
		return nil, err
	}

	for {
		switch vm.Solve() {
		case solver.StatusSolved:
			return vm.WitnessMap(), nil
		case solver.StatusFailed:
			return nil, vm.Err()
		case solver.StatusRequiresForeignCall:
			req := vm.PendingForeignCall()
			out, err := cfg.handler(req.Function, req.Inputs)
			if err != nil {
				return nil, fmt.Errorf("foreign call %q: %w", req.Function, err)
			}
			if err := vm.ResolvePendingForeignCall(brillig.ForeignCallResult{Values: out}); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("solver stopped in an unexpected state")
		}
	}
}

// Verify checks that every assert-zero constraint of the circuit evaluates to
// zero under the witness. It is the soundness check run by tests and the CLI
// after solving.
func Verify(f field.Field, circuit *acir.Circuit, witness *solver.WitnessMap) error {
	for i, op := range circuit.Opcodes {
		if op.Kind != acir.KindAssertZero {
			continue
		}
		v, known := op.AssertZero.Evaluate(f, witness.Get)
		if !known {
			return fmt.Errorf("opcode %d: constraint references an unassigned witness", i)
		}
		if !v.IsZero() {
			return fmt.Errorf("opcode %d: constraint evaluates to %s", i, f.String(v))
		}
	}
	return nil
}
