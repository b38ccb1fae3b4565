// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package compile

import (
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/field"
	"github.com/logical-mechanism/circuitvm/pkg/pwg"
)

func noSupport(acir.PrimitiveKind) bool { return false }

func TestCompileExpandsAndWidthFitsRangeCheck(t *testing.T) {
	c := acir.NewCircuit()
	c.CurrentWitnessIndex = 1
	c.PrivateParameters = []acir.Witness{1}
	p := &acir.PrimitiveCall{
		Kind:   acir.PrimitiveRangeCheck,
		Inputs: []acir.InputGroup{{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 4}}}},
	}
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}

	res, err := Compile(c, Options{Backend: BackendCSAT, Width: 4, Supports: noSupport})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i, op := range res.Circuit.Opcodes {
		if op.Kind == acir.OpcodePrimitive {
			t.Fatalf("opcode %d is still a primitive call after fallback expansion", i)
		}
		if op.Kind == acir.OpcodeArithmetic && len(op.Witnesses()) > 4 {
			t.Fatalf("opcode %d has %d witnesses, exceeds width 4", i, len(op.Witnesses()))
		}
	}
}

// TestRangeFallbackSolvesBits compiles a declined range_check(w1, bits=8)
// down to its bit-decomposition expansion and solves it for w1=42,
// expecting the little-endian bits [0,1,0,1,0,1,0,0].
func TestRangeFallbackSolvesBits(t *testing.T) {
	c := acir.NewCircuit()
	c.CurrentWitnessIndex = 1
	c.PrivateParameters = []acir.Witness{1}
	p := &acir.PrimitiveCall{
		Kind:   acir.PrimitiveRangeCheck,
		Inputs: []acir.InputGroup{{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 8}}}},
	}
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}

	res, err := Compile(c, Options{Backend: BackendCSAT, Width: 3, Supports: noSupport})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	wm := acir.NewWitnessMap()
	wm.Insert(1, field.FromUint64(42))
	st := pwg.New(res.Circuit, wm, pwg.Options{}).Solve()
	if st.Kind != pwg.StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}

	// Bit witnesses are minted right after w1, so b0..b7 are w2..w9.
	want := []uint64{0, 1, 0, 1, 0, 1, 0, 0}
	for i, bit := range want {
		got, ok := wm.Get(acir.Witness(2 + i))
		if !ok || !field.Equal(got, field.FromUint64(bit)) {
			t.Fatalf("bit %d = %v (ok=%v), want %d", i, got, ok, bit)
		}
	}
}

func TestCompileR1CSPassesThrough(t *testing.T) {
	c := acir.NewCircuit()
	res, err := Compile(c, Options{Backend: BackendR1CS})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Circuit == nil {
		t.Fatalf("expected a non-nil circuit")
	}
}
