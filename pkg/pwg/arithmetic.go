// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// solveArithmetic accumulates every known contribution of e into a running
// sum and every unknown contribution into a per-witness coefficient, then
// solves for the single remaining unknown.
func (s *Solver) solveArithmetic(idx int, e *acir.Expression) Status {
	sum := e.QConstant
	unknown := make(map[acir.Witness]field.Element)
	blocked := false

	for _, t := range e.MulTerms {
		lv, lok := s.witnesses.Get(t.Left)
		rv, rok := s.witnesses.Get(t.Right)
		switch {
		case lok && rok:
			sum = field.Add(sum, field.Mul(t.Coefficient, field.Mul(lv, rv)))
		case lok && !rok:
			unknown[t.Right] = field.Add(unknown[t.Right], field.Mul(t.Coefficient, lv))
		case !lok && rok:
			unknown[t.Left] = field.Add(unknown[t.Left], field.Mul(t.Coefficient, rv))
		default:
			blocked = true
		}
	}
	for _, t := range e.LinTerms {
		v, ok := s.witnesses.Get(t.W)
		if ok {
			sum = field.Add(sum, field.Mul(t.Coefficient, v))
			continue
		}
		unknown[t.W] = field.Add(unknown[t.W], t.Coefficient)
	}

	live := make(map[acir.Witness]field.Element, len(unknown))
	for w, c := range unknown {
		if !c.IsZero() {
			live[w] = c
		}
	}

	switch {
	case blocked || len(live) > 1:
		return s.failNow(&circuiterr.OpcodeNotSolvableError{
			Location: circuiterr.OpLocation(idx),
			Cause:    &circuiterr.TooManyUnknowns{},
		})
	case len(live) == 0:
		if !sum.IsZero() {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{
				Location: circuiterr.OpLocation(idx),
				Reason:   "arithmetic gate does not evaluate to zero",
			})
		}
		return Status{Kind: StatusInProgress}
	default:
		for w, c := range live {
			val := field.Neg(field.Mul(field.Inverse(c), sum))
			if !s.witnesses.Insert(w, val) {
				return s.failNow(&circuiterr.UnsatisfiedConstraintError{
					Location: circuiterr.OpLocation(idx),
					Reason:   "solved value conflicts with existing witness assignment",
				})
			}
		}
		return Status{Kind: StatusInProgress}
	}
}
