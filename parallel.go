package acvm

import (
	"golang.org/x/sync/errgroup"

	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/solver"
)

// Instance is one independent solve: its own circuit, bytecode table and
// initial witness. Instances share nothing mutable, so they can run
// concurrently.
type Instance struct {
	Circuit  *acir.Circuit
	Programs map[uint32]*brillig.Program
	Initial  *solver.WitnessMap
}

// SolveMany solves independent circuits in parallel, one solver instance
// each. The blackbox registry and the options are shared read-only. The
// first error aborts the group; on success the returned slice is indexed
// like instances.
func SolveMany(f field.Field, instances []Instance, opts ...Option) ([]*solver.WitnessMap, error) {
	results := make([]*solver.WitnessMap, len(instances))
	var g errgroup.Group
	for i, inst := range instances {
		g.Go(func() error {
			w, err := Solve(f, inst.Circuit, inst.Programs, inst.Initial, opts...)
			if err != nil {
				return err
			}
			results[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
