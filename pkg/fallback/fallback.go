// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package fallback supplies canned arithmetic expansions of primitive
// operations, used when a backend declines to support one natively.
package fallback

import (
	"fmt"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Allocator mints fresh witnesses, threading a counter through an entire
// compile pass.
type Allocator struct {
	current acir.Witness
}

// NewAllocator starts minting witnesses after the circuit's current index.
func NewAllocator(startAfter acir.Witness) *Allocator {
	return &Allocator{current: startAfter}
}

// Next allocates and returns a fresh witness.
func (a *Allocator) Next() acir.Witness {
	a.current++
	return a.current
}

// Current reports the highest witness minted so far (or the starting
// value, if none have been minted).
func (a *Allocator) Current() acir.Witness { return a.current }

// Expansion is the result of expanding one primitive call: the new opcodes
// needed to constrain it, plus the outputs the caller should bind in place
// of the original primitive call's outputs.
type Expansion struct {
	Opcodes []acir.Opcode
	Outputs []acir.Witness
}

// Expand rewrites p into an arithmetic expansion. It returns a
// *circuiterr.UnsupportedPrimitiveError if no fallback exists for p.Kind,
// and a *circuiterr.UnsatisfiedConstraintError if the call itself is
// malformed (e.g. mismatched and/xor operand widths); it never panics, so
// an untrusted circuit cannot crash the compiler host.
func Expand(alloc *Allocator, p *acir.PrimitiveCall) (Expansion, error) {
	bitwiseMalformed := len(p.Inputs) < 2 || len(p.Inputs[0].Inputs) < 1 || len(p.Inputs[1].Inputs) < 1 || len(p.Outputs) < 1
	switch p.Kind {
	case acir.PrimitiveRangeCheck:
		if len(p.Inputs) < 1 || len(p.Inputs[0].Inputs) < 1 {
			return Expansion{}, &circuiterr.UnsatisfiedConstraintError{Reason: "range_check call has no input witness"}
		}
		return expandRangeCheck(alloc, p), nil
	case acir.PrimitiveAnd:
		if bitwiseMalformed {
			return Expansion{}, &circuiterr.UnsatisfiedConstraintError{Reason: "and call needs two input witnesses and one output"}
		}
		return expandBitwise(alloc, p)
	case acir.PrimitiveXor:
		if bitwiseMalformed {
			return Expansion{}, &circuiterr.UnsatisfiedConstraintError{Reason: "xor call needs two input witnesses and one output"}
		}
		return expandBitwise(alloc, p)
	case acir.PrimitiveSha256:
		return expandU32Hash(alloc, p), nil
	default:
		return Expansion{}, &circuiterr.UnsupportedPrimitiveError{Kind: p.Kind.String()}
	}
}

// expandRangeCheck decomposes the single input witness into BitWidth
// boolean witnesses b_0..b_{n-1}: a ToLERadix directive hints their values,
// b_i*(b_i-1)=0 pins each to {0,1}, and a recomposition constraint
// w - Σ 2^i b_i = 0 ties them back to the input. The directive comes
// first so a forward pass solves the bits before their constraints are
// checked.
func expandRangeCheck(alloc *Allocator, p *acir.PrimitiveCall) Expansion {
	in := p.Inputs[0].Inputs[0]
	bits := make([]acir.Witness, in.BitWidth)
	for i := range bits {
		bits[i] = alloc.Next()
	}

	opcodes := []acir.Opcode{acir.DirectiveOpcode(&acir.Directive{
		Kind:           acir.DirectiveToLERadix,
		ToLERadixA:     acir.NewWitnessExpr(in.Witness),
		ToLERadixBits:  append([]acir.Witness(nil), bits...),
		ToLERadixRadix: 2,
	})}

	recompose := acir.NewWitnessExpr(in.Witness)
	pow := field.One()
	two := field.FromUint64(2)
	for _, b := range bits {
		// b*(b-1) = 0  =>  b*b - b = 0
		boolConstraint := &acir.Expression{
			MulTerms: []acir.MulTerm{{Coefficient: field.One(), Left: b, Right: b}},
			LinTerms: []acir.LinearTerm{{Coefficient: field.Neg(field.One()), W: b}},
		}
		opcodes = append(opcodes, acir.ArithmeticOpcode(boolConstraint))

		recompose = acir.Sub(recompose, acir.MulScalar(acir.NewWitnessExpr(b), pow))
		pow = field.Mul(pow, two)
	}
	recompose.Simplify()
	opcodes = append(opcodes, acir.ArithmeticOpcode(recompose))

	return Expansion{Opcodes: opcodes, Outputs: bits}
}

// expandBitwise decomposes both inputs bit by bit and recombines using the
// boolean identity for AND (x*y) or XOR (x+y-2xy), the standard circuit
// expansions for these gates over a single bit. Both operands must declare
// the same bit width; a mismatched call is rejected rather than expanded.
func expandBitwise(alloc *Allocator, p *acir.PrimitiveCall) (Expansion, error) {
	a := p.Inputs[0].Inputs[0]
	b := p.Inputs[1].Inputs[0]
	if a.BitWidth != b.BitWidth {
		return Expansion{}, &circuiterr.UnsatisfiedConstraintError{
			Reason: fmt.Sprintf("and/xor operands declare mismatched bit widths %d and %d", a.BitWidth, b.BitWidth),
		}
	}

	var opcodes []acir.Opcode
	outBits := make([]acir.Witness, a.BitWidth)

	decompose := func(in acir.FunctionInput) []acir.Witness {
		expansion := expandRangeCheck(alloc, &acir.PrimitiveCall{
			Kind:   acir.PrimitiveRangeCheck,
			Inputs: []acir.InputGroup{{Inputs: []acir.FunctionInput{in}}},
		})
		opcodes = append(opcodes, expansion.Opcodes...)
		return expansion.Outputs
	}

	aBits := decompose(a)
	bBits := decompose(b)

	for i := uint32(0); i < a.BitWidth; i++ {
		out := alloc.Next()
		outBits[i] = out
		var constraint *acir.Expression
		switch p.Kind {
		case acir.PrimitiveAnd:
			// out - a_i*b_i = 0
			constraint = &acir.Expression{
				MulTerms: []acir.MulTerm{{Coefficient: field.Neg(field.One()), Left: aBits[i], Right: bBits[i]}},
				LinTerms: []acir.LinearTerm{{Coefficient: field.One(), W: out}},
			}
		case acir.PrimitiveXor:
			// out - a_i - b_i + 2*a_i*b_i = 0
			constraint = &acir.Expression{
				MulTerms: []acir.MulTerm{{Coefficient: field.FromUint64(2), Left: aBits[i], Right: bBits[i]}},
				LinTerms: []acir.LinearTerm{
					{Coefficient: field.One(), W: out},
					{Coefficient: field.Neg(field.One()), W: aBits[i]},
					{Coefficient: field.Neg(field.One()), W: bBits[i]},
				},
			}
		}
		opcodes = append(opcodes, acir.ArithmeticOpcode(constraint))
	}

	// Recompose the output witness from its bits.
	out := p.Outputs[0]
	recompose := acir.NewWitnessExpr(out)
	pow := field.One()
	two := field.FromUint64(2)
	for _, ob := range outBits {
		recompose = acir.Sub(recompose, acir.MulScalar(acir.NewWitnessExpr(ob), pow))
		pow = field.Mul(pow, two)
	}
	recompose.Simplify()
	opcodes = append(opcodes, acir.ArithmeticOpcode(recompose))

	return Expansion{Opcodes: opcodes, Outputs: []acir.Witness{out}}, nil
}
