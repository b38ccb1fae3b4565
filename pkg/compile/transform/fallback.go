// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package transform implements the compile pipeline's backend-facing
// passes: Fallback, CSAT width-fitting, and R1CS pass-through.
package transform

import (
	"fmt"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/fallback"
)

// SupportsFunc reports whether a backend supports a given primitive kind
// natively.
type SupportsFunc func(acir.PrimitiveKind) bool

// Fallback rewrites every primitive call supports declines, substituting
// the fallback library's arithmetic expansion and threading a single
// witness allocator across the whole pass so newly minted witnesses never
// collide.
func Fallback(c *acir.Circuit, supports SupportsFunc) (*acir.Circuit, error) {
	if supports == nil {
		// A backend that never declines: every primitive passes through.
		supports = func(acir.PrimitiveKind) bool { return true }
	}
	out := &acir.Circuit{
		CurrentWitnessIndex: c.CurrentWitnessIndex,
		PrivateParameters:   append([]acir.Witness(nil), c.PrivateParameters...),
		PublicParameters:    append([]acir.Witness(nil), c.PublicParameters...),
		ReturnValues:        append([]acir.Witness(nil), c.ReturnValues...),
	}
	alloc := fallback.NewAllocator(c.CurrentWitnessIndex)

	for i, op := range c.Opcodes {
		if op.Kind != acir.OpcodePrimitive || supports(op.Primitive.Kind) {
			out.Opcodes = append(out.Opcodes, op)
			continue
		}

		expansion, err := fallback.Expand(alloc, op.Primitive)
		if err != nil {
			return nil, fmt.Errorf("fallback: opcode %d: %w", i, err)
		}
		out.Opcodes = append(out.Opcodes, expansion.Opcodes...)
	}

	out.CurrentWitnessIndex = alloc.Current()
	return out, nil
}
