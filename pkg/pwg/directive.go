// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"math/big"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// solveDirective executes d's hint, deriving witness values
// non-deterministically. Directives add no constraint of their own; a
// missing input halts the solve with an OpcodeNotSolvableError, since
// width-fitted circuits order opcodes for a single forward pass.
func (s *Solver) solveDirective(idx int, d *acir.Directive) Status {
	switch d.Kind {
	case acir.DirectiveInvert:
		x, ok := evalExpr(d.InvertX, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		return s.assign(idx, d.InvertResult, field.Inverse(x))

	case acir.DirectiveQuotient:
		a, aok := evalExpr(d.QuotientA, s.witnesses)
		b, bok := evalExpr(d.QuotientB, s.witnesses)
		if !aok || !bok {
			return s.notSolvable(idx)
		}
		takeDivision := true
		if d.QuotientPredicate != nil {
			p, pok := evalExpr(d.QuotientPredicate, s.witnesses)
			if !pok {
				return s.notSolvable(idx)
			}
			takeDivision = !p.IsZero()
		}
		var q, r field.Element
		if takeDivision {
			if b.IsZero() {
				return s.failNow(&circuiterr.UnsatisfiedConstraintError{
					Location: circuiterr.OpLocation(idx),
					Reason:   "quotient directive divisor is zero",
				})
			}
			qBig, rBig := new(big.Int), new(big.Int)
			qBig.QuoRem(a.ToBigInt(), b.ToBigInt(), rBig)
			q, r = field.FromBigInt(qBig), field.FromBigInt(rBig)
		}
		if st := s.assign(idx, d.QuotientQ, q); st.Kind != StatusInProgress {
			return st
		}
		return s.assign(idx, d.QuotientR, r)

	case acir.DirectiveTruncate:
		a, ok := evalExpr(d.TruncateA, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		mod := new(big.Int).Lsh(big.NewInt(1), uint(d.TruncateBitSize))
		truncated := new(big.Int).Mod(a.ToBigInt(), mod)
		return s.assign(idx, d.TruncateResult, field.FromBigInt(truncated))

	case acir.DirectiveOddRange:
		a, ok := evalExpr(d.OddRangeA, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		low := d.OddRangeBitSize / 2
		if d.OddRangeBitSize%2 == 1 {
			low++
		}
		lowMod := new(big.Int).Lsh(big.NewInt(1), uint(low))
		aBig := a.ToBigInt()
		bits0 := new(big.Int).Mod(aBig, lowMod)
		bits1 := new(big.Int).Rsh(aBig, uint(low))
		if st := s.assign(idx, d.OddRangeBits0, field.FromBigInt(bits0)); st.Kind != StatusInProgress {
			return st
		}
		return s.assign(idx, d.OddRangeBits1, field.FromBigInt(bits1))

	case acir.DirectiveToLERadix:
		a, ok := evalExpr(d.ToLERadixA, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		radix := new(big.Int).SetUint64(d.ToLERadixRadix)
		remaining := a.ToBigInt()
		for _, w := range d.ToLERadixBits {
			digit := new(big.Int)
			remaining.DivMod(remaining, radix, digit)
			if st := s.assign(idx, w, field.FromBigInt(digit)); st.Kind != StatusInProgress {
				return st
			}
		}
		return Status{Kind: StatusInProgress}

	default:
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "unknown directive kind"})
	}
}

// assign binds w to v, failing with an UnsatisfiedConstraintError on
// conflict with an existing binding.
func (s *Solver) assign(idx int, w acir.Witness, v field.Element) Status {
	if !s.witnesses.Insert(w, v) {
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{
			Location: circuiterr.OpLocation(idx),
			Reason:   "directive result conflicts with existing witness assignment",
		})
	}
	return Status{Kind: StatusInProgress}
}

// notSolvable reports that a directive's inputs are not yet fully assigned;
// the solver treats this like any other not-yet-ready opcode.
func (s *Solver) notSolvable(idx int) Status {
	return s.failNow(&circuiterr.OpcodeNotSolvableError{
		Location: circuiterr.OpLocation(idx),
		Cause:    &circuiterr.MissingAssignment{},
	})
}
