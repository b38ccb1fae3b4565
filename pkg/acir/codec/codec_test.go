// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package codec

import (
	"bytes"
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func additionCircuit() *acir.Circuit {
	c := acir.NewCircuit()
	c.CurrentWitnessIndex = 3
	e := &acir.Expression{
		LinTerms: []acir.LinearTerm{
			{Coefficient: field.FromUint64(1), W: 1},
			{Coefficient: field.FromUint64(1), W: 2},
			{Coefficient: field.Neg(field.FromUint64(1)), W: 3},
		},
	}
	c.Opcodes = append(c.Opcodes, acir.ArithmeticOpcode(e))
	c.PrivateParameters = []acir.Witness{1, 2}
	c.ReturnValues = []acir.Witness{3}
	return c
}

func TestCircuitRoundTrip(t *testing.T) {
	c := additionCircuit()

	var buf bytes.Buffer
	if err := EncodeCircuit(&buf, c); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeCircuit(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.CurrentWitnessIndex != c.CurrentWitnessIndex {
		t.Fatalf("current_witness_index = %d, want %d", got.CurrentWitnessIndex, c.CurrentWitnessIndex)
	}
	if len(got.Opcodes) != len(c.Opcodes) {
		t.Fatalf("opcode count = %d, want %d", len(got.Opcodes), len(c.Opcodes))
	}
	if len(got.Opcodes[0].Arithmetic.LinTerms) != 3 {
		t.Fatalf("lin terms = %d, want 3", len(got.Opcodes[0].Arithmetic.LinTerms))
	}
}

func TestCircuitRoundTripWithAuxBytecode(t *testing.T) {
	c := acir.NewCircuit()
	c.CurrentWitnessIndex = 6
	pkg := &acir.AuxBytecodePackage{
		Inputs: []acir.AuxInputBinding{
			{Register: 0, Single: acir.NewWitnessExpr(1)},
		},
		Outputs: []acir.AuxOutputBinding{
			{Register: 1, Witness: 5},
		},
		Bytecode: []brillig.Opcode{
			{Kind: brillig.OpForeignCall, ForeignName: "invert",
				ForeignInputs:  []brillig.ValueOrArray{brillig.Single(0)},
				ForeignOutputs: []brillig.ValueOrArray{brillig.Single(1)}},
			{Kind: brillig.OpStop},
		},
	}
	c.Opcodes = append(c.Opcodes, acir.AuxBytecodeOpcode(pkg))

	var buf bytes.Buffer
	if err := EncodeCircuit(&buf, c); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeCircuit(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gotPkg := got.Opcodes[0].AuxBytecode
	if len(gotPkg.Bytecode) != 2 {
		t.Fatalf("bytecode len = %d, want 2", len(gotPkg.Bytecode))
	}
	if gotPkg.Bytecode[0].ForeignName != "invert" {
		t.Fatalf("foreign name = %q", gotPkg.Bytecode[0].ForeignName)
	}
	if gotPkg.Outputs[0].Witness != 5 {
		t.Fatalf("output witness = %d, want 5", gotPkg.Outputs[0].Witness)
	}
}

func TestWitnessMapRoundTrip(t *testing.T) {
	m := acir.NewWitnessMap()
	m.Insert(1, field.FromUint64(2))
	m.Insert(2, field.FromUint64(3))
	m.Insert(3, field.FromUint64(5))

	var buf bytes.Buffer
	if err := EncodeWitnessMap(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeWitnessMap(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("len = %d, want 3", got.Len())
	}
	v, ok := got.Get(3)
	if !ok || !field.Equal(v, field.FromUint64(5)) {
		t.Fatalf("w3 = %v,%v, want 5,true", v, ok)
	}
}

func TestDecodeTruncatedFailsWithoutPanic(t *testing.T) {
	c := additionCircuit()
	var buf bytes.Buffer
	if err := EncodeCircuit(&buf, c); err != nil {
		t.Fatalf("encode: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]
	if _, err := DecodeCircuit(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("expected error decoding truncated input")
	}
}

func TestDecodeGarbageFailsWithoutPanic(t *testing.T) {
	garbage := []byte{0xff, 0x00, 0x01, 0x02, 0x03}
	if _, err := DecodeCircuit(bytes.NewReader(garbage)); err == nil {
		t.Fatalf("expected error decoding garbage input")
	}
}
