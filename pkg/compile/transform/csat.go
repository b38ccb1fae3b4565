// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package transform

import (
	"encoding/hex"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Width is the fixed-fan-in budget W of the CSAT single-gate template
// q_M·w_L·w_R + Σ_{i=1..W} q_i·w_i + q_c = 0, with the
// quadratic term's two witnesses counted among the W.
type Width int

// csatCache is the intermediate-variable cache: normalized expression ->
// witness (the leading coefficient is not stored; a hit scales the cached
// witness by the caller's own leading coefficient), iterated in insertion order so repeated
// compilations emit identical output. Lookups never iterate it, so
// the order slice exists purely so a future caller (diagnostics, golden
// output) sees a reproducible dump rather than map iteration order.
type csatCache struct {
	entries map[string]acir.Witness
	order   []string
}

func newCSATCache() *csatCache {
	return &csatCache{entries: make(map[string]acir.Witness)}
}

func (c *csatCache) get(key string) (acir.Witness, bool) {
	w, ok := c.entries[key]
	return w, ok
}

func (c *csatCache) put(key string, w acir.Witness) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = w
}

type csatState struct {
	width    Width
	alloc    acir.Witness
	cache    *csatCache
	solvable *bitset.BitSet
	out      []acir.Opcode
}

func (s *csatState) nextWitness() acir.Witness {
	s.alloc++
	return s.alloc
}

// CSAT rewrites every arithmetic opcode of c into one or more identities,
// each fitting the fixed-width single-gate template. It requires width to
// be at least 3.
func CSAT(c *acir.Circuit, width Width) (*acir.Circuit, error) {
	if width < 3 {
		return nil, fmt.Errorf("csat: width must be >= 3, got %d", width)
	}

	s := &csatState{
		width:    width,
		alloc:    c.CurrentWitnessIndex,
		cache:    newCSATCache(),
		solvable: bitset.New(uint(c.CurrentWitnessIndex) + 1),
	}
	for _, w := range c.PrivateParameters {
		s.solvable.Set(uint(w))
	}
	for _, w := range c.PublicParameters {
		s.solvable.Set(uint(w))
	}

	for idx, op := range c.Opcodes {
		if op.Kind != acir.OpcodeArithmetic {
			s.out = append(s.out, op)
			for _, w := range op.Witnesses() {
				s.solvable.Set(uint(w))
			}
			continue
		}

		residual, err := s.reduce(op.Arithmetic.Clone())
		if err != nil {
			return nil, fmt.Errorf("csat: opcode %d: %w", idx, err)
		}
		residual.Simplify()
		s.out = append(s.out, acir.ArithmeticOpcode(residual))
		for _, w := range residual.Witnesses() {
			s.solvable.Set(uint(w))
		}
	}

	out := &acir.Circuit{
		CurrentWitnessIndex: s.alloc,
		Opcodes:             s.out,
		PrivateParameters:   append([]acir.Witness(nil), c.PrivateParameters...),
		PublicParameters:    append([]acir.Witness(nil), c.PublicParameters...),
		ReturnValues:        append([]acir.Witness(nil), c.ReturnValues...),
	}
	return out, nil
}

func (s *csatState) fits(e *acir.Expression) bool {
	return len(e.MulTerms) <= 1 && len(e.Witnesses()) <= int(s.width)
}

// reduce repeatedly peels quadratic terms (full-gate then partial-gate) and
// folds overflowing linear runs until e fits the template.
func (s *csatState) reduce(e *acir.Expression) (*acir.Expression, error) {
	e.Simplify()

	for len(e.MulTerms) > 1 || !s.fits(e) {
		if len(e.MulTerms) >= 1 {
			var err error
			e, err = s.peelOneMulTerm(e)
			if err != nil {
				return nil, err
			}
			continue
		}

		var err error
		e, err = s.foldLinearOverflow(e)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// peelOneMulTerm removes e.MulTerms[0], preferring the full-gate scan (when
// both its witnesses already appear linearly) and falling back to the
// partial-gate pure-multiplication peel.
func (s *csatState) peelOneMulTerm(e *acir.Expression) (*acir.Expression, error) {
	mt := e.MulTerms[0]

	if li, lok := linearIndex(e, mt.Left); lok {
		if ri, rok := linearIndex(e, mt.Right); rok {
			if s.solvable.Test(uint(mt.Left)) && s.solvable.Test(uint(mt.Right)) {
				return s.fullGatePeel(e, mt, li, ri)
			}
		}
	}

	if !s.solvable.Test(uint(mt.Left)) || !s.solvable.Test(uint(mt.Right)) {
		return nil, &circuiterr.UnsatisfiedConstraintError{Reason: "csat: quadratic term has no solvable witness to absorb"}
	}
	return s.partialGatePeel(e, mt)
}

// fullGatePeel absorbs the quadratic term plus the two linear entries it
// shares witnesses with, plus up to width-3 further solvable linear
// entries, into a fresh intermediate.
func (s *csatState) fullGatePeel(e *acir.Expression, mt acir.MulTerm, li, ri int) (*acir.Expression, error) {
	used := map[int]bool{li: true, ri: true}
	chosen := []acir.LinearTerm{e.LinTerms[li], e.LinTerms[ri]}

	budget := int(s.width) - 3
	for i, t := range e.LinTerms {
		if budget <= 0 {
			break
		}
		if used[i] || t.W == mt.Left || t.W == mt.Right {
			continue
		}
		if !s.solvable.Test(uint(t.W)) {
			continue
		}
		used[i] = true
		chosen = append(chosen, t)
		budget--
	}

	sub := &acir.Expression{MulTerms: []acir.MulTerm{mt}, LinTerms: chosen}
	t, leadCoeff := s.intern(sub)

	residual := &acir.Expression{QConstant: e.QConstant}
	residual.MulTerms = append(residual.MulTerms, e.MulTerms[1:]...)
	for i, lt := range e.LinTerms {
		if used[i] {
			continue
		}
		residual.LinTerms = append(residual.LinTerms, lt)
	}
	residual.LinTerms = append(residual.LinTerms, acir.LinearTerm{Coefficient: leadCoeff, W: t})
	residual.Simplify()
	return residual, nil
}

// partialGatePeel replaces a solvable pure-multiplication term q_M·L·R with
// a fresh intermediate t, constrained by q_M·L·R − t = 0.
func (s *csatState) partialGatePeel(e *acir.Expression, mt acir.MulTerm) (*acir.Expression, error) {
	sub := &acir.Expression{MulTerms: []acir.MulTerm{mt}}
	t, leadCoeff := s.intern(sub)

	residual := &acir.Expression{QConstant: e.QConstant}
	residual.MulTerms = append(residual.MulTerms, e.MulTerms[1:]...)
	residual.LinTerms = append(residual.LinTerms, e.LinTerms...)
	residual.LinTerms = append(residual.LinTerms, acir.LinearTerm{Coefficient: leadCoeff, W: t})
	residual.Simplify()
	return residual, nil
}

// foldLinearOverflow folds the leading width-1 solvable linear entries of a
// purely-linear, over-wide expression into a fresh intermediate.
func (s *csatState) foldLinearOverflow(e *acir.Expression) (*acir.Expression, error) {
	limit := int(s.width) - 1
	if limit < 1 {
		limit = 1
	}

	used := map[int]bool{}
	var chosen []acir.LinearTerm
	for i, t := range e.LinTerms {
		if len(chosen) >= limit {
			break
		}
		if !s.solvable.Test(uint(t.W)) {
			continue
		}
		used[i] = true
		chosen = append(chosen, t)
	}
	if len(chosen) < 2 {
		return nil, &circuiterr.UnsatisfiedConstraintError{Reason: "csat: not enough solvable witnesses to fold an over-wide linear residue"}
	}

	sub := &acir.Expression{LinTerms: chosen}
	t, leadCoeff := s.intern(sub)

	residual := &acir.Expression{QConstant: e.QConstant}
	for i, lt := range e.LinTerms {
		if used[i] {
			continue
		}
		residual.LinTerms = append(residual.LinTerms, lt)
	}
	residual.LinTerms = append(residual.LinTerms, acir.LinearTerm{Coefficient: leadCoeff, W: t})
	residual.Simplify()
	return residual, nil
}

// intern normalizes sub (dividing through by its first non-zero
// coefficient), looks it up in the CSE cache, and on a miss allocates a
// fresh witness and emits the defining gate. It returns the witness
// standing in for sub, plus sub's own leading coefficient (the ratio the
// caller multiplies that witness by to recover sub's value in the
// enclosing expression).
func (s *csatState) intern(sub *acir.Expression) (acir.Witness, field.Element) {
	sub.Simplify()
	leadCoeff, _ := firstNonZeroCoeff(sub)
	inv := field.Inverse(leadCoeff)

	normalized := &acir.Expression{QConstant: field.Mul(sub.QConstant, inv)}
	for _, t := range sub.MulTerms {
		normalized.MulTerms = append(normalized.MulTerms, acir.MulTerm{Coefficient: field.Mul(t.Coefficient, inv), Left: t.Left, Right: t.Right})
	}
	for _, t := range sub.LinTerms {
		normalized.LinTerms = append(normalized.LinTerms, acir.LinearTerm{Coefficient: field.Mul(t.Coefficient, inv), W: t.W})
	}

	key := encodeNormalKey(normalized)
	if w, ok := s.cache.get(key); ok {
		return w, leadCoeff
	}

	t := s.nextWitness()
	s.cache.put(key, t)
	gate := normalized.Clone()
	gate.LinTerms = append(gate.LinTerms, acir.LinearTerm{Coefficient: field.Neg(field.One()), W: t})
	gate.Simplify()
	s.out = append(s.out, acir.ArithmeticOpcode(gate))
	s.solvable.Set(uint(t))
	return t, leadCoeff
}

func linearIndex(e *acir.Expression, w acir.Witness) (int, bool) {
	for i, t := range e.LinTerms {
		if t.W == w {
			return i, true
		}
	}
	return 0, false
}

func firstNonZeroCoeff(e *acir.Expression) (field.Element, bool) {
	if len(e.MulTerms) > 0 {
		return e.MulTerms[0].Coefficient, true
	}
	if len(e.LinTerms) > 0 {
		return e.LinTerms[0].Coefficient, true
	}
	if !e.QConstant.IsZero() {
		return e.QConstant, true
	}
	return field.Element{}, false
}

func encodeNormalKey(e *acir.Expression) string {
	key := ""
	for _, t := range e.MulTerms {
		b := t.Coefficient.BytesBE()
		key += fmt.Sprintf("M:%s:%d:%d;", hex.EncodeToString(b[:]), t.Left, t.Right)
	}
	for _, t := range e.LinTerms {
		b := t.Coefficient.BytesBE()
		key += fmt.Sprintf("L:%s:%d;", hex.EncodeToString(b[:]), t.W)
	}
	cb := e.QConstant.BytesBE()
	key += fmt.Sprintf("C:%s", hex.EncodeToString(cb[:]))
	return key
}
