// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package session

import (
	"context"
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func TestSolveAllRunsIndependentSessions(t *testing.T) {
	newJob := func(known field.Element) SolveJob {
		e := &acir.Expression{
			QConstant: field.Neg(known),
			LinTerms:  []acir.LinearTerm{{Coefficient: field.One(), W: 0}},
		}
		c := acir.NewCircuit()
		c.Opcodes = []acir.Opcode{acir.ArithmeticOpcode(e)}
		return SolveJob{Circuit: c, Witnesses: acir.NewWitnessMap()}
	}

	jobs := []SolveJob{newJob(field.FromUint64(1)), newJob(field.FromUint64(2))}
	results, err := SolveAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("SolveAll: %v", err)
	}
	for i, want := range []uint64{1, 2} {
		got, ok := results[i].Witnesses.Get(0)
		if !ok || !field.Equal(got, field.FromUint64(want)) {
			t.Fatalf("job %d: w0 = %v (ok=%v), want %d", i, got, ok, want)
		}
	}
}

func TestSolveAllPropagatesFirstFailure(t *testing.T) {
	bad := &acir.Expression{QConstant: field.One()}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.ArithmeticOpcode(bad)}
	jobs := []SolveJob{{Circuit: c, Witnesses: acir.NewWitnessMap()}}

	if _, err := SolveAll(context.Background(), jobs); err == nil {
		t.Fatalf("expected an error from an unsatisfiable job")
	}
}
