package acir

import (
	"fmt"
)

// Circuit is an immutable ordered opcode sequence plus the declared public
// input and output witnesses. The opcode order is a solving hint, not a
// strict schedule: the solver may need several passes over it.
type Circuit struct {
	// CurrentWitnessIndex is one past the highest witness index used.
	CurrentWitnessIndex uint32
	Opcodes             []Opcode
	PublicInputs        []Witness
	PublicOutputs       []Witness
}

func (c *Circuit) checkWitness(w Witness, what string, opcodeIndex int) error {
	if uint32(w) >= c.CurrentWitnessIndex {
		return fmt.Errorf("opcode %d: %s witness %d out of bound (current witness index %d)", opcodeIndex, what, w, c.CurrentWitnessIndex)
	}
	return nil
}

func (c *Circuit) checkExpr(e *Expression, what string, opcodeIndex int) error {
	if e == nil {
		return fmt.Errorf("opcode %d: missing %s expression", opcodeIndex, what)
	}
	for _, w := range e.Witnesses() {
		if err := c.checkWitness(w, what, opcodeIndex); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks structural well-formedness: payloads matching kinds and
// witness indices in bound. It does not check solvability.
func (c *Circuit) Validate() error {
	for i, op := range c.Opcodes {
		switch op.Kind {
		case KindAssertZero:
			if err := c.checkExpr(op.AssertZero, "assert_zero", i); err != nil {
				return err
			}
		case KindBlackBoxFuncCall:
			if op.BlackBox == nil {
				return fmt.Errorf("opcode %d: missing blackbox payload", i)
			}
			for _, in := range op.BlackBox.Inputs {
				if !in.IsConst {
					if err := c.checkWitness(in.W, "blackbox input", i); err != nil {
						return err
					}
				}
			}
			for _, w := range op.BlackBox.Outputs {
				if err := c.checkWitness(w, "blackbox output", i); err != nil {
					return err
				}
			}
		case KindBrilligCall:
			if op.Brillig == nil {
				return fmt.Errorf("opcode %d: missing brillig payload", i)
			}
			for ii, in := range op.Brillig.Inputs {
				switch in.Kind {
				case BrilligInputSingle:
					if err := c.checkExpr(in.Single, fmt.Sprintf("brillig input %d", ii), i); err != nil {
						return err
					}
				case BrilligInputArray:
					for _, e := range in.Array {
						if err := c.checkExpr(e, fmt.Sprintf("brillig input %d", ii), i); err != nil {
							return err
						}
					}
				default:
					return fmt.Errorf("opcode %d: brillig input %d has unknown kind %d", i, ii, in.Kind)
				}
			}
			for oi, out := range op.Brillig.Outputs {
				switch out.Kind {
				case BrilligOutputSimple:
					if err := c.checkWitness(out.Simple, fmt.Sprintf("brillig output %d", oi), i); err != nil {
						return err
					}
				case BrilligOutputArray:
					for _, w := range out.Array {
						if err := c.checkWitness(w, fmt.Sprintf("brillig output %d", oi), i); err != nil {
							return err
						}
					}
				default:
					return fmt.Errorf("opcode %d: brillig output %d has unknown kind %d", i, oi, out.Kind)
				}
			}
			if op.Brillig.Predicate != nil {
				if err := c.checkExpr(op.Brillig.Predicate, "brillig predicate", i); err != nil {
					return err
				}
			}
		case KindMemoryInit:
			if op.MemInit == nil {
				return fmt.Errorf("opcode %d: missing memory init payload", i)
			}
			for _, w := range op.MemInit.Init {
				if err := c.checkWitness(w, "memory init", i); err != nil {
					return err
				}
			}
		case KindMemoryOp:
			if op.MemOp == nil {
				return fmt.Errorf("opcode %d: missing memory op payload", i)
			}
			if err := c.checkExpr(&op.MemOp.Index, "memory index", i); err != nil {
				return err
			}
			if err := c.checkExpr(&op.MemOp.Value, "memory value", i); err != nil {
				return err
			}
		default:
			return fmt.Errorf("opcode %d: unknown kind %d", i, op.Kind)
		}
	}
	for _, w := range c.PublicInputs {
		if err := c.checkWitness(w, "public input", -1); err != nil {
			return err
		}
	}
	for _, w := range c.PublicOutputs {
		if err := c.checkWitness(w, "public output", -1); err != nil {
			return err
		}
	}
	return nil
}
