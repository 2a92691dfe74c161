package blackbox

import (
	"math/big"

	"github.com/acirlabs/acvm/field"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	fr_grumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fr"
)

// The embedded curve is grumpkin: its base field is the bn254 scalar field, so
// point coordinates are plain circuit field elements. Points cross the
// blackbox boundary as (x, y, is_infinite) triples and scalars as a pair of
// 128-bit limbs (low, high).

var scalarLimbBound = new(big.Int).Lsh(big.NewInt(1), 128)

// curvePoint decodes one (x, y, is_infinite) triple.
func curvePoint(f field.Field, fn Func, x, y, isInfinite Input) (grumpkin.G1Affine, bool, error) {
	var p grumpkin.G1Affine
	inf := f.ToBigInt(isInfinite.Value)
	switch {
	case inf.Sign() == 0:
	case inf.Cmp(big.NewInt(1)) == 0:
		return p, true, nil
	default:
		return p, false, failf(fn, "point is malformed (non-boolean is_infinite flag)")
	}
	p.X.SetBigInt(f.ToBigInt(x.Value))
	p.Y.SetBigInt(f.ToBigInt(y.Value))
	if !p.IsOnCurve() {
		return p, false, failf(fn, "point (%s, %s) is not on curve", f.String(x.Value), f.String(y.Value))
	}
	if !p.IsInSubGroup() {
		return p, false, failf(fn, "point (%s, %s) is not in the correct subgroup", f.String(x.Value), f.String(y.Value))
	}
	return p, false, nil
}

func pointOutputs(f field.Field, p *grumpkin.G1Affine) []field.Element {
	if p.IsInfinity() {
		zero := field.Element{}
		return []field.Element{zero, zero, f.One()}
	}
	x := p.X.BigInt(new(big.Int))
	y := p.Y.BigInt(new(big.Int))
	return []field.Element{f.FromInterface(x), f.FromInterface(y), field.Element{}}
}

// curveScalar combines a (low, high) limb pair into a grumpkin scalar,
// rejecting oversized limbs and values outside the group order.
func curveScalar(f field.Field, fn Func, lo, hi Input) (*big.Int, error) {
	low := f.ToBigInt(lo.Value)
	high := f.ToBigInt(hi.Value)
	for _, limb := range []*big.Int{low, high} {
		if limb.Cmp(scalarLimbBound) >= 0 {
			return nil, failf(fn, "limb %s is not less than 2^128", limb.Text(16))
		}
	}
	k := new(big.Int).Lsh(high, 128)
	k.Add(k, low)
	if k.Cmp(fr_grumpkin.Modulus()) >= 0 {
		return nil, failf(fn, "%s is not a valid grumpkin scalar", k.Text(16))
	}
	return k, nil
}

func addPoints(f field.Field, fn Func, inputs []Input) ([]field.Element, error) {
	p1, inf1, err := curvePoint(f, fn, inputs[0], inputs[1], inputs[2])
	if err != nil {
		return nil, err
	}
	p2, inf2, err := curvePoint(f, fn, inputs[3], inputs[4], inputs[5])
	if err != nil {
		return nil, err
	}
	if inf1 || inf2 {
		return nil, failf(fn, "infinite input point")
	}
	var jac grumpkin.G1Jac
	jac.FromAffine(&p1)
	jac.AddMixed(&p2)
	var res grumpkin.G1Affine
	res.FromJacobian(&jac)
	return pointOutputs(f, &res), nil
}

func solveEmbeddedCurveAdd(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) != 6 || nbOutputs != 3 {
		return nil, failf(EmbeddedCurveAdd, "expects 2 point triples and 1 output triple")
	}
	return addPoints(f, EmbeddedCurveAdd, inputs)
}

// solveEmbeddedCurveDouble is defined as the addition of a point to itself.
func solveEmbeddedCurveDouble(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) != 3 || nbOutputs != 3 {
		return nil, failf(EmbeddedCurveDouble, "expects 1 point triple and 1 output triple")
	}
	doubled := append(append([]Input{}, inputs...), inputs...)
	return addPoints(f, EmbeddedCurveDouble, doubled)
}

// solveMultiScalarMul computes sum_i k_i * P_i. Inputs are k point triples
// followed by k scalar limb pairs.
func solveMultiScalarMul(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) == 0 || len(inputs)%5 != 0 || nbOutputs != 3 {
		return nil, failf(MultiScalarMul, "expects k point triples plus k scalar limb pairs and 1 output triple")
	}
	k := len(inputs) / 5
	points, scalars := inputs[:3*k], inputs[3*k:]

	var acc grumpkin.G1Jac
	for i := 0; i < k; i++ {
		p, inf, err := curvePoint(f, MultiScalarMul, points[3*i], points[3*i+1], points[3*i+2])
		if err != nil {
			return nil, err
		}
		s, err := curveScalar(f, MultiScalarMul, scalars[2*i], scalars[2*i+1])
		if err != nil {
			return nil, err
		}
		if inf || s.Sign() == 0 {
			continue
		}
		var term grumpkin.G1Affine
		term.ScalarMultiplication(&p, s)
		acc.AddMixed(&term)
	}
	var res grumpkin.G1Affine
	res.FromJacobian(&acc)
	return pointOutputs(f, &res), nil
}

// solveFixedBaseScalarMul multiplies the grumpkin generator by a scalar given
// as (low, high) limbs.
func solveFixedBaseScalarMul(f field.Field, inputs []Input, nbOutputs int) ([]field.Element, error) {
	if len(inputs) != 2 || nbOutputs != 3 {
		return nil, failf(FixedBaseScalarMul, "expects 2 scalar limbs and 1 output triple")
	}
	s, err := curveScalar(f, FixedBaseScalarMul, inputs[0], inputs[1])
	if err != nil {
		return nil, err
	}
	_, gen := grumpkin.Generators()
	var res grumpkin.G1Affine
	if s.Sign() != 0 {
		res.ScalarMultiplication(&gen, s)
	}
	return pointOutputs(f, &res), nil
}
