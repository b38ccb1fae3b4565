// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package optimizer implements circuit-to-circuit cleanup passes that run
// before transformation: General and Redundant-range.
package optimizer

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
)

// General simplifies every arithmetic opcode in place: it drops
// zero-coefficient terms and coalesces quadratic terms that share an
// unordered witness pair. It is idempotent: running it twice produces the
// same circuit as running it once.
func General(c *acir.Circuit) *acir.Circuit {
	out := c.Clone()
	for i, op := range out.Opcodes {
		if op.Kind != acir.OpcodeArithmetic {
			continue
		}
		e := op.Arithmetic.Clone()
		canonicalizeMulOrder(e)
		e.Simplify()
		out.Opcodes[i] = acir.ArithmeticOpcode(e)
	}
	return out
}

// canonicalizeMulOrder rewrites every quadratic term so Left <= Right,
// since q*w_a*w_b and q*w_b*w_a name the same constraint; Simplify's
// sort-then-merge only coalesces terms whose (Left, Right) pair is
// already identical.
func canonicalizeMulOrder(e *acir.Expression) {
	for i, t := range e.MulTerms {
		if t.Left > t.Right {
			e.MulTerms[i].Left, e.MulTerms[i].Right = t.Right, t.Left
		}
	}
}

// RedundantRange drops range_check primitive calls made redundant by a
// narrower check on the same witness elsewhere in the circuit, keeping only
// the first call with the smallest bit width seen per witness. The
// surviving opcodes keep their relative order; removed opcodes vanish from
// the slice, so later opcodes' indices shift down, and no mapping from old
// to new indices is returned. Like every other compile pass, it produces a
// new, independent slice.
func RedundantRange(c *acir.Circuit) *acir.Circuit {
	minWidth := make(map[acir.Witness]uint32)
	hasRangeCheck := bitset.New(uint(c.CurrentWitnessIndex) + 1)

	for _, op := range c.Opcodes {
		if op.Kind != acir.OpcodePrimitive || op.Primitive.Kind != acir.PrimitiveRangeCheck {
			continue
		}
		if len(op.Primitive.Inputs) == 0 || len(op.Primitive.Inputs[0].Inputs) == 0 {
			continue
		}
		in := op.Primitive.Inputs[0].Inputs[0]
		hasRangeCheck.Set(uint(in.Witness))
		if cur, ok := minWidth[in.Witness]; !ok || in.BitWidth < cur {
			minWidth[in.Witness] = in.BitWidth
		}
	}

	kept := bitset.New(uint(c.CurrentWitnessIndex) + 1)
	out := c.Clone()
	filtered := out.Opcodes[:0]
	for _, op := range out.Opcodes {
		if op.Kind == acir.OpcodePrimitive && op.Primitive.Kind == acir.PrimitiveRangeCheck &&
			len(op.Primitive.Inputs) > 0 && len(op.Primitive.Inputs[0].Inputs) > 0 {
			in := op.Primitive.Inputs[0].Inputs[0]
			if !hasRangeCheck.Test(uint(in.Witness)) || in.BitWidth != minWidth[in.Witness] || kept.Test(uint(in.Witness)) {
				continue
			}
			kept.Set(uint(in.Witness))
		}
		filtered = append(filtered, op)
	}
	out.Opcodes = filtered
	return out
}
