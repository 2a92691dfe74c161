// Package acir is the constrained circuit representation consumed by the
// witness solver: normalized degree-2 expressions over witness indices, plus
// a closed set of constraint opcodes.
package acir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/acirlabs/acvm/field"
)

// Witness indexes a single slot in the witness map.
type Witness uint32

// LinearTerm is Coeff * W.
type LinearTerm struct {
	Coeff field.Element
	W     Witness
}

// QuadTerm is Coeff * W0 * W1. Terms are kept with W0 >= W1 so that a
// (W0, W1) key is unique within a normalized expression.
type QuadTerm struct {
	Coeff  field.Element
	W0, W1 Witness
}

// Expression is Constant + sum of linear terms + sum of quadratic terms.
// A normalized expression has no zero coefficients and no duplicate keys.
type Expression struct {
	Constant field.Element
	Linear   []LinearTerm
	Quad     []QuadTerm
}

// NewConstantExpression returns c
func NewConstantExpression(c field.Element) *Expression {
	return &Expression{Constant: c}
}

// NewLinearExpression returns c * w
func NewLinearExpression(c field.Element, w Witness) *Expression {
	return &Expression{Linear: []LinearTerm{{Coeff: c, W: w}}}
}

// NewQuadExpression returns c * w0 * w1
func NewQuadExpression(c field.Element, w0, w1 Witness) *Expression {
	if w0 < w1 {
		w0, w1 = w1, w0
	}
	return &Expression{Quad: []QuadTerm{{Coeff: c, W0: w0, W1: w1}}}
}

func (e *Expression) Clone() *Expression {
	res := &Expression{Constant: e.Constant}
	res.Linear = append([]LinearTerm(nil), e.Linear...)
	res.Quad = append([]QuadTerm(nil), e.Quad...)
	return res
}

// Degree returns the degree of the polynomial
func (e *Expression) Degree() int {
	if len(e.Quad) > 0 {
		return 2
	}
	if len(e.Linear) > 0 {
		return 1
	}
	return 0
}

func (e *Expression) IsConstant() bool {
	return len(e.Linear) == 0 && len(e.Quad) == 0
}

// ToWitness reports whether the expression degenerates to exactly one witness
// with coefficient one and no constant.
func (e *Expression) ToWitness(f field.Field) (Witness, bool) {
	if len(e.Quad) != 0 || len(e.Linear) != 1 || !e.Constant.IsZero() {
		return 0, false
	}
	if !f.IsOne(e.Linear[0].Coeff) {
		return 0, false
	}
	return e.Linear[0].W, true
}

// Witnesses returns every witness referenced by the expression, deduplicated
// and sorted.
func (e *Expression) Witnesses() []Witness {
	seen := make(map[Witness]bool)
	for _, t := range e.Linear {
		seen[t.W] = true
	}
	for _, t := range e.Quad {
		seen[t.W0] = true
		seen[t.W1] = true
	}
	res := make([]Witness, 0, len(seen))
	for w := range seen {
		res = append(res, w)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// AddAssign accumulates o into e. The result is not normalized.
func (e *Expression) AddAssign(f field.Field, o *Expression) {
	e.Constant = f.Add(e.Constant, o.Constant)
	e.Linear = append(e.Linear, o.Linear...)
	e.Quad = append(e.Quad, o.Quad...)
}

// MulConstant scales every term by c. The result is not normalized unless e
// was and c is nonzero.
func (e *Expression) MulConstant(f field.Field, c field.Element) {
	e.Constant = f.Mul(e.Constant, c)
	for i := range e.Linear {
		e.Linear[i].Coeff = f.Mul(e.Linear[i].Coeff, c)
	}
	for i := range e.Quad {
		e.Quad[i].Coeff = f.Mul(e.Quad[i].Coeff, c)
	}
}

// Normalize sorts terms, merges duplicate keys and removes zero coefficients,
// establishing the canonical form expected by the solver.
func (e *Expression) Normalize(f field.Field) {
	for i := range e.Quad {
		if e.Quad[i].W0 < e.Quad[i].W1 {
			e.Quad[i].W0, e.Quad[i].W1 = e.Quad[i].W1, e.Quad[i].W0
		}
	}
	sort.SliceStable(e.Linear, func(i, j int) bool { return e.Linear[i].W < e.Linear[j].W })
	sort.SliceStable(e.Quad, func(i, j int) bool {
		if e.Quad[i].W0 != e.Quad[j].W0 {
			return e.Quad[i].W0 < e.Quad[j].W0
		}
		return e.Quad[i].W1 < e.Quad[j].W1
	})

	linear := e.Linear[:0]
	for _, t := range e.Linear {
		if len(linear) > 0 && linear[len(linear)-1].W == t.W {
			linear[len(linear)-1].Coeff = f.Add(linear[len(linear)-1].Coeff, t.Coeff)
			continue
		}
		linear = append(linear, t)
	}
	j := 0
	for _, t := range linear {
		if !t.Coeff.IsZero() {
			linear[j] = t
			j++
		}
	}
	e.Linear = linear[:j]

	quad := e.Quad[:0]
	for _, t := range e.Quad {
		if len(quad) > 0 && quad[len(quad)-1].W0 == t.W0 && quad[len(quad)-1].W1 == t.W1 {
			quad[len(quad)-1].Coeff = f.Add(quad[len(quad)-1].Coeff, t.Coeff)
			continue
		}
		quad = append(quad, t)
	}
	j = 0
	for _, t := range quad {
		if !t.Coeff.IsZero() {
			quad[j] = t
			j++
		}
	}
	e.Quad = quad[:j]
}

// Evaluate computes the expression under get, which reports the value of a
// witness and whether it is known. The second return value is false if any
// referenced witness is unknown.
func (e *Expression) Evaluate(f field.Field, get func(Witness) (field.Element, bool)) (field.Element, bool) {
	res := e.Constant
	for _, t := range e.Linear {
		v, ok := get(t.W)
		if !ok {
			return field.Element{}, false
		}
		res = f.Add(res, f.Mul(t.Coeff, v))
	}
	for _, t := range e.Quad {
		v0, ok := get(t.W0)
		if !ok {
			return field.Element{}, false
		}
		v1, ok := get(t.W1)
		if !ok {
			return field.Element{}, false
		}
		res = f.Add(res, f.Mul(f.Mul(t.Coeff, v0), v1))
	}
	return res, true
}

func (e *Expression) String(f field.Field) string {
	var sb strings.Builder
	for _, t := range e.Quad {
		fmt.Fprintf(&sb, "%s*w%d*w%d + ", f.String(t.Coeff), t.W0, t.W1)
	}
	for _, t := range e.Linear {
		fmt.Fprintf(&sb, "%s*w%d + ", f.String(t.Coeff), t.W)
	}
	sb.WriteString(f.String(e.Constant))
	return sb.String()
}
