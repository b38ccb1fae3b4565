// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

import (
	"golang.org/x/exp/slices"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// MulTerm is a single quadratic term: Coefficient * Left * Right.
type MulTerm struct {
	Coefficient field.Element
	Left        Witness
	Right       Witness
}

// LinearTerm is a single linear term: Coefficient * W.
type LinearTerm struct {
	Coefficient field.Element
	W           Witness
}

// Expression is an affine-plus-quadratic polynomial over witnesses, degree
// at most 2.
type Expression struct {
	MulTerms  []MulTerm
	LinTerms  []LinearTerm
	QConstant field.Element
}

// NewConstant returns the constant expression c.
func NewConstant(c field.Element) *Expression {
	return &Expression{QConstant: c}
}

// NewWitnessExpr returns the expression "1*w".
func NewWitnessExpr(w Witness) *Expression {
	return &Expression{LinTerms: []LinearTerm{{Coefficient: field.One(), W: w}}}
}

// Clone deep-copies e.
func (e *Expression) Clone() *Expression {
	out := &Expression{QConstant: e.QConstant}
	out.MulTerms = append(out.MulTerms, e.MulTerms...)
	out.LinTerms = append(out.LinTerms, e.LinTerms...)
	return out
}

// Add returns e + other as a new, un-simplified expression; callers
// typically call Simplify afterward.
func Add(e, other *Expression) *Expression {
	out := e.Clone()
	out.MulTerms = append(out.MulTerms, other.MulTerms...)
	out.LinTerms = append(out.LinTerms, other.LinTerms...)
	out.QConstant = field.Add(out.QConstant, other.QConstant)
	return out
}

// Sub returns e - other.
func Sub(e, other *Expression) *Expression {
	return Add(e, Neg(other))
}

// Neg returns -e.
func Neg(e *Expression) *Expression {
	out := &Expression{QConstant: field.Neg(e.QConstant)}
	for _, t := range e.MulTerms {
		out.MulTerms = append(out.MulTerms, MulTerm{Coefficient: field.Neg(t.Coefficient), Left: t.Left, Right: t.Right})
	}
	for _, t := range e.LinTerms {
		out.LinTerms = append(out.LinTerms, LinearTerm{Coefficient: field.Neg(t.Coefficient), W: t.W})
	}
	return out
}

// MulScalar returns e scaled by c.
func MulScalar(e *Expression, c field.Element) *Expression {
	out := &Expression{QConstant: field.Mul(e.QConstant, c)}
	for _, t := range e.MulTerms {
		out.MulTerms = append(out.MulTerms, MulTerm{Coefficient: field.Mul(t.Coefficient, c), Left: t.Left, Right: t.Right})
	}
	for _, t := range e.LinTerms {
		out.LinTerms = append(out.LinTerms, LinearTerm{Coefficient: field.Mul(t.Coefficient, c), W: t.W})
	}
	return out
}

// AddConstant returns e + c.
func AddConstant(e *Expression, c field.Element) *Expression {
	out := e.Clone()
	out.QConstant = field.Add(out.QConstant, c)
	return out
}

// MulDegreeOneUnivariates multiplies two degree<=1, single-witness
// expressions of the form c*w (or a bare constant) producing a valid
// degree-2 Expression. It is an error (returns false) if both operands carry
// a linear term simultaneously with the other also non-constant in a way
// that would require degree > 2; quadratic*quadratic is never
// supported.
func MulDegreeOneUnivariates(a, b *Expression) (*Expression, bool) {
	if len(a.MulTerms) > 0 || len(b.MulTerms) > 0 {
		return nil, false
	}
	if len(a.LinTerms) > 1 || len(b.LinTerms) > 1 {
		return nil, false
	}
	switch {
	case len(a.LinTerms) == 0 && len(b.LinTerms) == 0:
		return NewConstant(field.Mul(a.QConstant, b.QConstant)), true
	case len(a.LinTerms) == 0:
		return MulScalar(b, a.QConstant), true
	case len(b.LinTerms) == 0:
		return MulScalar(a, b.QConstant), true
	default:
		at, bt := a.LinTerms[0], b.LinTerms[0]
		out := &Expression{
			MulTerms: []MulTerm{{Coefficient: field.Mul(at.Coefficient, bt.Coefficient), Left: at.W, Right: bt.W}},
		}
		// (a.QConstant + at) * (b.QConstant + bt) cross terms
		if !a.QConstant.IsZero() {
			out = Add(out, MulScalar(NewWitnessExpr(bt.W), field.Mul(a.QConstant, bt.Coefficient)))
		}
		if !b.QConstant.IsZero() {
			out = Add(out, MulScalar(NewWitnessExpr(at.W), field.Mul(b.QConstant, at.Coefficient)))
		}
		out.QConstant = field.Add(out.QConstant, field.Mul(a.QConstant, b.QConstant))
		return out, true
	}
}

// Sort orders quadratic terms by (left, right) witness index and linear
// terms by witness index.
func (e *Expression) Sort() {
	slices.SortFunc(e.MulTerms, func(a, b MulTerm) int {
		if a.Left != b.Left {
			return cmpWitness(a.Left, b.Left)
		}
		return cmpWitness(a.Right, b.Right)
	})
	slices.SortFunc(e.LinTerms, func(a, b LinearTerm) int {
		return cmpWitness(a.W, b.W)
	})
}

func cmpWitness(a, b Witness) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Simplify collapses quadratic terms sharing the same witness pair (taking
// their coefficient sum), collapses linear terms on the same witness, and
// removes zero-coefficient terms. It sorts first so duplicates are
// adjacent. After optimization no zero-coefficient term may remain.
func (e *Expression) Simplify() {
	e.Sort()

	mul := make([]MulTerm, 0, len(e.MulTerms))
	for _, t := range e.MulTerms {
		if n := len(mul); n > 0 && mul[n-1].Left == t.Left && mul[n-1].Right == t.Right {
			mul[n-1].Coefficient = field.Add(mul[n-1].Coefficient, t.Coefficient)
			continue
		}
		mul = append(mul, t)
	}
	mul2 := mul[:0]
	for _, t := range mul {
		if !t.Coefficient.IsZero() {
			mul2 = append(mul2, t)
		}
	}
	e.MulTerms = mul2

	lin := make([]LinearTerm, 0, len(e.LinTerms))
	for _, t := range e.LinTerms {
		if n := len(lin); n > 0 && lin[n-1].W == t.W {
			lin[n-1].Coefficient = field.Add(lin[n-1].Coefficient, t.Coefficient)
			continue
		}
		lin = append(lin, t)
	}
	lin2 := lin[:0]
	for _, t := range lin {
		if !t.Coefficient.IsZero() {
			lin2 = append(lin2, t)
		}
	}
	e.LinTerms = lin2
}

// IsConst reports whether e has no terms at all.
func (e *Expression) IsConst() bool {
	return len(e.MulTerms) == 0 && len(e.LinTerms) == 0
}

// IsLinear reports whether e has no quadratic terms.
func (e *Expression) IsLinear() bool {
	return len(e.MulTerms) == 0
}

// ToConst returns the constant iff the expression has no terms.
func (e *Expression) ToConst() (field.Element, bool) {
	if e.IsConst() {
		return e.QConstant, true
	}
	return field.Element{}, false
}

// ToWitness returns the inner witness iff e is exactly "1*w" with zero
// constant and no quadratic terms.
func (e *Expression) ToWitness() (Witness, bool) {
	if len(e.MulTerms) != 0 || len(e.LinTerms) != 1 || !e.QConstant.IsZero() {
		return 0, false
	}
	t := e.LinTerms[0]
	if !field.Equal(t.Coefficient, field.One()) {
		return 0, false
	}
	return t.W, true
}

// IsDegreeOneUnivariate reports whether e has exactly one linear term and no
// quadratic terms; the constant term is not examined.
func (e *Expression) IsDegreeOneUnivariate() bool {
	if len(e.MulTerms) != 0 || len(e.LinTerms) != 1 {
		return false
	}
	return true
}

// Witnesses returns every witness appearing in e (quadratic or linear),
// deduplicated, in sorted order.
func (e *Expression) Witnesses() []Witness {
	seen := make(map[Witness]struct{})
	for _, t := range e.MulTerms {
		seen[t.Left] = struct{}{}
		seen[t.Right] = struct{}{}
	}
	for _, t := range e.LinTerms {
		seen[t.W] = struct{}{}
	}
	out := make([]Witness, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	return sortWitnesses(out)
}

// TermCount is the number of quadratic + linear terms, the quantity the
// CSAT transformer compares against its width budget.
func (e *Expression) TermCount() int {
	return len(e.MulTerms) + len(e.LinTerms)
}
