// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package fallback

import (
	"errors"
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
)

func TestExpandRangeCheckBitCount(t *testing.T) {
	alloc := NewAllocator(1)
	p := &acir.PrimitiveCall{
		Kind:   acir.PrimitiveRangeCheck,
		Inputs: []acir.InputGroup{{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 8}}}},
	}
	exp, err := Expand(alloc, p)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(exp.Outputs) != 8 {
		t.Fatalf("outputs = %d, want 8", len(exp.Outputs))
	}
	// 1 bit-hint directive + 8 boolean constraints + 1 recomposition.
	if len(exp.Opcodes) != 10 {
		t.Fatalf("opcodes = %d, want 10", len(exp.Opcodes))
	}
	if exp.Opcodes[0].Kind != acir.OpcodeDirective {
		t.Fatalf("first opcode kind = %v, want a bit-hint directive", exp.Opcodes[0].Kind)
	}
}

func TestExpandUnknownPrimitive(t *testing.T) {
	alloc := NewAllocator(1)
	p := &acir.PrimitiveCall{Kind: acir.PrimitiveEcdsaSecp256k1}
	_, err := Expand(alloc, p)
	var unsupported *circuiterr.UnsupportedPrimitiveError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedPrimitiveError for ecdsa_secp256k1", err)
	}
}

func TestExpandXorBitCount(t *testing.T) {
	alloc := NewAllocator(2)
	p := &acir.PrimitiveCall{
		Kind: acir.PrimitiveXor,
		Inputs: []acir.InputGroup{
			{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 4}}},
			{Inputs: []acir.FunctionInput{{Witness: 2, BitWidth: 4}}},
		},
		Outputs: []acir.Witness{100},
	}
	exp, err := Expand(alloc, p)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(exp.Outputs) != 1 || exp.Outputs[0] != 100 {
		t.Fatalf("outputs = %v, want [100]", exp.Outputs)
	}
	if alloc.Current() <= 2 {
		t.Fatalf("allocator did not mint fresh witnesses")
	}
}

func TestExpandBitwiseMismatchedWidths(t *testing.T) {
	alloc := NewAllocator(2)
	p := &acir.PrimitiveCall{
		Kind: acir.PrimitiveAnd,
		Inputs: []acir.InputGroup{
			{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 4}}},
			{Inputs: []acir.FunctionInput{{Witness: 2, BitWidth: 8}}},
		},
		Outputs: []acir.Witness{100},
	}
	_, err := Expand(alloc, p)
	var unsatisfied *circuiterr.UnsatisfiedConstraintError
	if !errors.As(err, &unsatisfied) {
		t.Fatalf("err = %v, want UnsatisfiedConstraintError for mismatched widths", err)
	}
}
