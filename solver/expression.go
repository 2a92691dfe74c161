package solver

import (
	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/field"
)

// reducedExpr is an assert-zero expression folded under the current witness
// map: a known constant plus the net coefficient of at most one unknown
// witness appearing linearly.
type reducedExpr struct {
	constant field.Element
	coeff    field.Element
	unknown  acir.Witness
	// nbUnknown counts distinct unknown witnesses with a linear occurrence;
	// 2 stands for "more than one".
	nbUnknown int
	// blocked is set when a term cannot be folded yet: a product of two
	// unknowns, or an unknown appearing quadratically.
	blocked bool
}

func (r *reducedExpr) addUnknown(f field.Field, w acir.Witness, coeff field.Element) {
	if r.nbUnknown == 0 {
		r.unknown = w
		r.coeff = coeff
		r.nbUnknown = 1
		return
	}
	if r.unknown == w {
		r.coeff = f.Add(r.coeff, coeff)
		return
	}
	r.nbUnknown = 2
}

// reduce folds the expression under get. The result is only meaningful for
// solving when blocked is false and nbUnknown <= 1.
func reduce(f field.Field, e *acir.Expression, get func(acir.Witness) (field.Element, bool)) reducedExpr {
	r := reducedExpr{constant: e.Constant}
	for _, t := range e.Quad {
		v0, ok0 := get(t.W0)
		v1, ok1 := get(t.W1)
		switch {
		case ok0 && ok1:
			r.constant = f.Add(r.constant, f.Mul(f.Mul(t.Coeff, v0), v1))
		case ok0:
			r.addUnknown(f, t.W1, f.Mul(t.Coeff, v0))
		case ok1:
			r.addUnknown(f, t.W0, f.Mul(t.Coeff, v1))
		default:
			// w0 may equal w1; either way this term is not linear in a
			// single unknown
			r.blocked = true
		}
	}
	for _, t := range e.Linear {
		if v, ok := get(t.W); ok {
			r.constant = f.Add(r.constant, f.Mul(t.Coeff, v))
		} else {
			r.addUnknown(f, t.W, t.Coeff)
		}
	}
	return r
}
