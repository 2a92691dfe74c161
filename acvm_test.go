package acvm

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/solver"
)

func initialWitness(f field.Field, values map[acir.Witness]uint64) *solver.WitnessMap {
	w := solver.NewWitnessMap()
	for k, v := range values {
		if err := w.Assign(k, f.FromInterface(v)); err != nil {
			panic(err)
		}
	}
	return w
}

// boundedIndex constrains w to {0, 1}: w * (w - 1) == 0.
func boundedIndex(f field.Field, w acir.Witness) *acir.Expression {
	e := acir.NewQuadExpression(f.One(), w, w)
	e.AddAssign(f, acir.NewLinearExpression(f.FromInterface(int64(-1)), w))
	return e
}

// increments constrains next == prev + 1.
func increments(f field.Field, next, prev acir.Witness) *acir.Expression {
	e := acir.NewLinearExpression(f.One(), next)
	e.AddAssign(f, acir.NewLinearExpression(f.FromInterface(int64(-1)), prev))
	e.Constant = f.FromInterface(int64(-1))
	return e
}

// pushCircuit models nbPushes appends to a capacity-2 array backed by a
// memory block. Witness layout: w0 = initial index, w1..w3 = pushed values,
// w4/w5/w6 = index after each push, w7/w8 = zero-initialized block cells.
func pushCircuit(f field.Field, nbPushes int) *acir.Circuit {
	one := f.One()
	indices := []acir.Witness{0, 4, 5, 6}
	c := &acir.Circuit{
		CurrentWitnessIndex: 11,
		Opcodes: []acir.Opcode{
			acir.NewMemoryInit(0, []acir.Witness{7, 8}),
		},
	}
	for i := 0; i < nbPushes; i++ {
		c.Opcodes = append(c.Opcodes,
			acir.NewAssertZero(boundedIndex(f, indices[i])),
			acir.NewMemoryOp(0, acir.MemWrite,
				*acir.NewLinearExpression(one, indices[i]),
				*acir.NewLinearExpression(one, acir.Witness(1+i))),
			acir.NewAssertZero(increments(f, indices[i+1], indices[i])),
		)
	}
	return c
}

func TestBoundedPushes(t *testing.T) {
	f := field.BN254()
	c := pushCircuit(f, 2)
	one := f.One()
	// read both cells back
	c.Opcodes = append(c.Opcodes,
		acir.NewMemoryOp(0, acir.MemRead,
			*acir.NewConstantExpression(field.Element{}),
			*acir.NewLinearExpression(one, 9)),
		acir.NewMemoryOp(0, acir.MemRead,
			*acir.NewConstantExpression(one),
			*acir.NewLinearExpression(one, 10)),
	)

	witness, err := Solve(f, c, nil, initialWitness(f, map[acir.Witness]uint64{
		0: 0, 1: 11, 2: 22, 3: 33, 7: 0, 8: 0,
	}))
	require.NoError(t, err)
	require.NoError(t, Verify(f, c, witness))

	v, _ := witness.Get(9)
	require.Equal(t, f.FromInterface(uint64(11)), v)
	v, _ = witness.Get(10)
	require.Equal(t, f.FromInterface(uint64(22)), v)
}

func TestPushBeyondCapacityFails(t *testing.T) {
	f := field.BN254()
	c := pushCircuit(f, 3)

	_, err := Solve(f, c, nil, initialWitness(f, map[acir.Witness]uint64{
		0: 0, 1: 11, 2: 22, 3: 33, 7: 0, 8: 0,
	}))
	require.Error(t, err)

	var resErr *solver.OpcodeResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, solver.ErrUnsatisfiedConstraint, resErr.Kind)
}

func TestSolveWithForeignCall(t *testing.T) {
	f := field.BN254()
	// the program asks the oracle to sum a 3-element array
	programs := map[uint32]*brillig.Program{
		0: {Opcodes: []brillig.Opcode{
			brillig.NewForeignCall("sum",
				[]brillig.ValueOrArray{{Kind: brillig.ScalarOperand, Register: 1}},
				[]brillig.ValueOrArray{{Kind: brillig.ArrayOperand, Array: brillig.HeapArray{Pointer: 0, Size: 3}}}),
			brillig.NewStop(),
		}},
	}
	one := f.One()
	c := &acir.Circuit{
		CurrentWitnessIndex: 4,
		Opcodes: []acir.Opcode{
			acir.NewBrilligCall(0,
				[]acir.BrilligInput{{
					Kind: acir.BrilligInputArray,
					Array: []*acir.Expression{
						acir.NewLinearExpression(one, 0),
						acir.NewLinearExpression(one, 1),
						acir.NewLinearExpression(one, 2),
					},
				}},
				[]acir.BrilligOutput{{Kind: acir.BrilligOutputSimple, Simple: 3}},
				nil),
		},
	}

	var calls int
	handler := func(name string, inputs [][]field.Element) ([][]field.Element, error) {
		calls++
		if name != "sum" {
			return nil, fmt.Errorf("unknown foreign call %q", name)
		}
		acc := field.Element{}
		for _, group := range inputs {
			for _, el := range group {
				acc = f.Add(acc, el)
			}
		}
		return [][]field.Element{{acc}}, nil
	}

	witness, err := Solve(f, c, programs, initialWitness(f, map[acir.Witness]uint64{0: 1, 1: 2, 2: 3}),
		WithForeignCallHandler(handler))
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	v, _ := witness.Get(3)
	require.Equal(t, f.FromInterface(uint64(6)), v)
}

func TestSolveForeignCallHandlerError(t *testing.T) {
	f := field.BN254()
	programs := map[uint32]*brillig.Program{
		0: {Opcodes: []brillig.Opcode{
			brillig.NewForeignCall("mystery",
				[]brillig.ValueOrArray{{Kind: brillig.ScalarOperand, Register: 0}},
				nil),
			brillig.NewStop(),
		}},
	}
	c := &acir.Circuit{
		CurrentWitnessIndex: 1,
		Opcodes: []acir.Opcode{
			acir.NewBrilligCall(0, nil,
				[]acir.BrilligOutput{{Kind: acir.BrilligOutputSimple, Simple: 0}},
				nil),
		},
	}

	// the default handler only knows "print"
	_, err := Solve(f, c, programs, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mystery")
}

func TestSolveIsDeterministic(t *testing.T) {
	f := field.BN254()
	initial := map[acir.Witness]uint64{0: 0, 1: 11, 2: 22, 3: 33, 7: 0, 8: 0}

	first, err := Solve(f, pushCircuit(f, 2), nil, initialWitness(f, initial))
	require.NoError(t, err)
	second, err := Solve(f, pushCircuit(f, 2), nil, initialWitness(f, initial))
	require.NoError(t, err)

	if diff := cmp.Diff(first.Serialize(f), second.Serialize(f)); diff != "" {
		t.Errorf("witness mismatch (-first +second):\n%s", diff)
	}
}

func TestVerifyRejectsTamperedWitness(t *testing.T) {
	f := field.BN254()
	e := acir.NewLinearExpression(f.One(), 0)
	e.AddAssign(f, acir.NewLinearExpression(f.One(), 1))
	e.Constant = f.FromInterface(int64(-3))
	c := &acir.Circuit{
		CurrentWitnessIndex: 2,
		Opcodes:             []acir.Opcode{acir.NewAssertZero(e)},
	}

	witness, err := Solve(f, c, nil, initialWitness(f, map[acir.Witness]uint64{0: 1}))
	require.NoError(t, err)
	require.NoError(t, Verify(f, c, witness))

	tampered := initialWitness(f, map[acir.Witness]uint64{0: 1, 1: 7})
	require.Error(t, Verify(f, c, tampered))

	incomplete := initialWitness(f, map[acir.Witness]uint64{0: 1})
	require.Error(t, Verify(f, c, incomplete))
}

func TestSolveMany(t *testing.T) {
	f := field.BN254()
	e := func() *acir.Expression {
		e := acir.NewLinearExpression(f.One(), 0)
		e.AddAssign(f, acir.NewLinearExpression(f.One(), 1))
		e.Constant = f.FromInterface(int64(-10))
		return e
	}

	instances := make([]Instance, 5)
	for i := range instances {
		instances[i] = Instance{
			Circuit: &acir.Circuit{
				CurrentWitnessIndex: 2,
				Opcodes:             []acir.Opcode{acir.NewAssertZero(e())},
			},
			Initial: initialWitness(f, map[acir.Witness]uint64{0: uint64(i)}),
		}
	}

	results, err := SolveMany(f, instances)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, w := range results {
		v, ok := w.Get(1)
		require.True(t, ok)
		require.Equal(t, f.FromInterface(uint64(10-i)), v)
	}
}

func TestSolveManyPropagatesFailure(t *testing.T) {
	f := field.BN254()
	bad := acir.NewConstantExpression(f.One())

	instances := []Instance{{
		Circuit: &acir.Circuit{
			CurrentWitnessIndex: 0,
			Opcodes:             []acir.Opcode{acir.NewAssertZero(bad)},
		},
	}}

	_, err := SolveMany(f, instances)
	require.Error(t, err)
}

func TestDefaultForeignCallHandler(t *testing.T) {
	f := field.BN254()
	out, err := DefaultForeignCallHandler("print", [][]field.Element{{f.One()}})
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = DefaultForeignCallHandler("nope", nil)
	require.Error(t, err)
}
